// Package util provides small helpers shared across the SDK packages.
package util
