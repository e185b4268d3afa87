package pokitdok

import (
	"context"
	"net/http"
	"net/url"

	"github.com/kbukum/pokitdok/httpclient"
)

// ContentTypeX12 is the content type of X12 file uploads.
const ContentTypeX12 = "application/EDI-X12"

func (c *Client) call(ctx context.Context, method, path string, params map[string]any) (map[string]any, error) {
	return c.Request(ctx, path, method, httpclient.ParamsFromMap(params), nil)
}

func (c *Client) upload(ctx context.Context, path string, params map[string]any, x12Path string) (map[string]any, error) {
	files := []httpclient.FilePart{{Path: x12Path, ContentType: ContentTypeX12}}
	return c.Request(ctx, path, http.MethodPost, httpclient.ParamsFromMap(params), files)
}

// withID appends an escaped identifier to prefix; an empty id leaves the
// collection path.
func withID(prefix, id string) string {
	return prefix + url.PathEscape(id)
}

// Activities lists activities, or fetches one when activityID is set.
func (c *Client) Activities(ctx context.Context, activityID string, params map[string]any) (map[string]any, error) {
	return c.call(ctx, http.MethodGet, withID("/activities/", activityID), params)
}

// Authorizations submits a prior authorization request.
func (c *Client) Authorizations(ctx context.Context, params map[string]any) (map[string]any, error) {
	return c.call(ctx, http.MethodPost, "/authorizations/", params)
}

// CashPrices returns cash prices for a procedure in a zip code.
func (c *Client) CashPrices(ctx context.Context, cptCode, zipCode string) (map[string]any, error) {
	return c.call(ctx, http.MethodGet, "/prices/cash", map[string]any{"cpt_code": cptCode, "zip_code": zipCode})
}

// CCD submits a continuity of care document.
func (c *Client) CCD(ctx context.Context, params map[string]any) (map[string]any, error) {
	return c.call(ctx, http.MethodPost, "/ccd/", params)
}

// Claims submits a claim.
func (c *Client) Claims(ctx context.Context, params map[string]any) (map[string]any, error) {
	return c.call(ctx, http.MethodPost, "/claims/", params)
}

// ClaimsStatus requests the status of a submitted claim.
func (c *Client) ClaimsStatus(ctx context.Context, params map[string]any) (map[string]any, error) {
	return c.call(ctx, http.MethodPost, "/claims/status", params)
}

// ClaimsConvert uploads an X12 837 file for conversion.
func (c *Client) ClaimsConvert(ctx context.Context, x12Path string) (map[string]any, error) {
	return c.upload(ctx, "/claims/convert", nil, x12Path)
}

// Eligibility checks a member's coverage.
func (c *Client) Eligibility(ctx context.Context, params map[string]any) (map[string]any, error) {
	return c.call(ctx, http.MethodPost, "/eligibility/", params)
}

// Enrollment submits a benefit enrollment.
func (c *Client) Enrollment(ctx context.Context, params map[string]any) (map[string]any, error) {
	return c.call(ctx, http.MethodPost, "/enrollment", params)
}

// EnrollmentSnapshot uploads an X12 834 file as an enrollment snapshot
// for a trading partner.
func (c *Client) EnrollmentSnapshot(ctx context.Context, tradingPartnerID, x12Path string) (map[string]any, error) {
	return c.upload(ctx, "/enrollment/snapshot", map[string]any{"trading_partner_id": tradingPartnerID}, x12Path)
}

// EnrollmentSnapshots lists snapshots, or fetches one when snapshotID is set.
func (c *Client) EnrollmentSnapshots(ctx context.Context, snapshotID string, params map[string]any) (map[string]any, error) {
	return c.call(ctx, http.MethodGet, withID("/enrollment/snapshot/", snapshotID), params)
}

// EnrollmentSnapshotData returns the enrollment records of a snapshot.
func (c *Client) EnrollmentSnapshotData(ctx context.Context, snapshotID string) (map[string]any, error) {
	return c.call(ctx, http.MethodGet, withID("/enrollment/snapshot/", snapshotID)+"/data", nil)
}

// ICDConvert maps an ICD-9 code to ICD-10.
func (c *Client) ICDConvert(ctx context.Context, code string) (map[string]any, error) {
	return c.call(ctx, http.MethodGet, withID("/icd/convert/", code), nil)
}

// InsurancePrices returns insurance prices for a procedure in a zip code.
func (c *Client) InsurancePrices(ctx context.Context, cptCode, zipCode string) (map[string]any, error) {
	return c.call(ctx, http.MethodGet, "/prices/insurance", map[string]any{"cpt_code": cptCode, "zip_code": zipCode})
}

// MPC looks up medical procedure codes by code, or searches by name and
// description. Empty arguments are omitted.
func (c *Client) MPC(ctx context.Context, code, name, description string) (map[string]any, error) {
	params := map[string]any{}
	if name != "" {
		params["name"] = name
	}
	if description != "" {
		params["description"] = description
	}
	return c.call(ctx, http.MethodGet, withID("/mpc/", code), params)
}

// OOPLoadPrice loads out-of-pocket prices.
func (c *Client) OOPLoadPrice(ctx context.Context, params map[string]any) (map[string]any, error) {
	return c.call(ctx, http.MethodPost, "/oop/insurance-load-price", params)
}

// OOPEstimate estimates a member's out-of-pocket cost.
func (c *Client) OOPEstimate(ctx context.Context, params map[string]any) (map[string]any, error) {
	return c.call(ctx, http.MethodPost, "/oop/insurance-estimate", params)
}

// Payers lists payers.
func (c *Client) Payers(ctx context.Context, params map[string]any) (map[string]any, error) {
	return c.call(ctx, http.MethodGet, "/payers/", params)
}

// Plans lists insurance plans.
func (c *Client) Plans(ctx context.Context, params map[string]any) (map[string]any, error) {
	return c.call(ctx, http.MethodGet, "/plans", params)
}

// Providers searches providers, or fetches one when npi is set.
func (c *Client) Providers(ctx context.Context, npi string, params map[string]any) (map[string]any, error) {
	return c.call(ctx, http.MethodGet, withID("/providers/", npi), params)
}

// TradingPartners lists trading partners, or fetches one when
// tradingPartnerID is set.
func (c *Client) TradingPartners(ctx context.Context, tradingPartnerID string) (map[string]any, error) {
	return c.call(ctx, http.MethodGet, withID("/tradingpartners/", tradingPartnerID), nil)
}

// Referrals submits a referral request.
func (c *Client) Referrals(ctx context.Context, params map[string]any) (map[string]any, error) {
	return c.call(ctx, http.MethodPost, "/referrals/", params)
}

// Schedulers lists scheduling systems, or fetches one when schedulerUUID is set.
func (c *Client) Schedulers(ctx context.Context, schedulerUUID string) (map[string]any, error) {
	return c.call(ctx, http.MethodGet, withID("/schedule/schedulers/", schedulerUUID), nil)
}

// AppointmentTypes lists appointment types, or fetches one.
func (c *Client) AppointmentTypes(ctx context.Context, appointmentTypeUUID string) (map[string]any, error) {
	return c.call(ctx, http.MethodGet, withID("/schedule/appointmenttypes/", appointmentTypeUUID), nil)
}

// ScheduleSlots creates open appointment slots.
func (c *Client) ScheduleSlots(ctx context.Context, params map[string]any) (map[string]any, error) {
	return c.call(ctx, http.MethodPost, "/schedule/slots/", params)
}

// Appointments searches appointments, or fetches one when appointmentUUID is set.
func (c *Client) Appointments(ctx context.Context, appointmentUUID string, params map[string]any) (map[string]any, error) {
	return c.call(ctx, http.MethodGet, withID("/schedule/appointments/", appointmentUUID), params)
}

// BookAppointment books an open slot.
func (c *Client) BookAppointment(ctx context.Context, appointmentUUID string, params map[string]any) (map[string]any, error) {
	return c.call(ctx, http.MethodPut, withID("/schedule/appointments/", appointmentUUID), params)
}

// UpdateAppointment changes a booked appointment.
func (c *Client) UpdateAppointment(ctx context.Context, appointmentUUID string, params map[string]any) (map[string]any, error) {
	return c.call(ctx, http.MethodPut, withID("/schedule/appointments/", appointmentUUID), params)
}

// CancelAppointment cancels a booked appointment.
func (c *Client) CancelAppointment(ctx context.Context, appointmentUUID string) (map[string]any, error) {
	return c.call(ctx, http.MethodDelete, withID("/schedule/appointments/", appointmentUUID), nil)
}

// CreateIdentity registers a new identity.
func (c *Client) CreateIdentity(ctx context.Context, params map[string]any) (map[string]any, error) {
	return c.call(ctx, http.MethodPost, "/identity/", params)
}

// UpdateIdentity changes an identity.
func (c *Client) UpdateIdentity(ctx context.Context, identityUUID string, params map[string]any) (map[string]any, error) {
	return c.call(ctx, http.MethodPut, withID("/identity/", identityUUID), params)
}

// Identity searches identities, or fetches one when identityUUID is set.
func (c *Client) Identity(ctx context.Context, identityUUID string, params map[string]any) (map[string]any, error) {
	return c.call(ctx, http.MethodGet, withID("/identity/", identityUUID), params)
}

// IdentityHistory lists the versions of an identity, or fetches one
// version when historicalVersion is set.
func (c *Client) IdentityHistory(ctx context.Context, identityUUID, historicalVersion string) (map[string]any, error) {
	path := withID("/identity/", identityUUID) + withID("/history/", historicalVersion)
	return c.call(ctx, http.MethodGet, path, nil)
}

// IdentityMatch runs an identity match job.
func (c *Client) IdentityMatch(ctx context.Context, params map[string]any) (map[string]any, error) {
	return c.call(ctx, http.MethodPost, "/identity/match", params)
}

// PharmacyPlans returns pharmacy benefit plans.
func (c *Client) PharmacyPlans(ctx context.Context, params map[string]any) (map[string]any, error) {
	return c.call(ctx, http.MethodGet, "/pharmacy/plans", params)
}

// PharmacyFormulary returns formulary coverage of a drug.
func (c *Client) PharmacyFormulary(ctx context.Context, params map[string]any) (map[string]any, error) {
	return c.call(ctx, http.MethodGet, "/pharmacy/formulary", params)
}

// PharmacyNetwork searches in-network pharmacies, or fetches one when npi is set.
func (c *Client) PharmacyNetwork(ctx context.Context, npi string, params map[string]any) (map[string]any, error) {
	return c.call(ctx, http.MethodGet, withID("/pharmacy/network/", npi), params)
}
