// Package pokitdok is a Go client for the PokitDok platform API.
//
// A Client authenticates with the OAuth2 client-credentials grant and
// exposes one method per platform endpoint. Every method returns the
// decoded JSON object of the response; on failure the decoded body, when
// there is one, is returned together with the error.
//
//	client, err := pokitdok.New(ctx, session.Config{
//		ClientID:     os.Getenv("POKITDOK_CLIENT_ID"),
//		ClientSecret: os.Getenv("POKITDOK_CLIENT_SECRET"),
//		AutoRefresh:  true,
//	})
//	if err != nil {
//		return err
//	}
//	payers, err := client.Payers(ctx, map[string]any{"state": "SC"})
//
// Errors are *errors.AppError values; inspect them with errors.HasCode or
// errors.KindOf from github.com/kbukum/pokitdok/errors.
package pokitdok
