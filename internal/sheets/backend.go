package sheets

import "context"

// Backend is the value-range API of the remote spreadsheet. Ranges use A1
// notation, e.g. "Sheet1!A:I".
type Backend interface {
	// Append adds rows after the last non-empty row of rng.
	Append(ctx context.Context, token, spreadsheetID, rng string, values [][]string) error
	// Read returns the rows of rng. Trailing empty cells may be omitted.
	Read(ctx context.Context, token, spreadsheetID, rng string) ([][]string, error)
	// Write overwrites rng with values.
	Write(ctx context.Context, token, spreadsheetID, rng string, values [][]string) error
}
