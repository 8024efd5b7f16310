package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"expensetracker/internal/log"
	ports "expensetracker/internal/sheets"
)

const valueInputOption = "USER_ENTERED"

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	logger        *log.Logger
}

// Options configures the ledger client. CredentialsJSON wins over CredentialsFile.
type Options struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
	// ClientOptions are passed to the Sheets service, overriding credentials.
	ClientOptions []goption.ClientOption
}

var _ ports.LedgerWriter = (*Client)(nil)

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, opts Options, logger *log.Logger) (*Client, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if strings.TrimSpace(opts.SheetName) == "" {
		return nil, errors.New("missing sheet name")
	}

	svc, err := newSheetsService(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: opts.SpreadsheetID,
		sheetName:     opts.SheetName,
		logger:        logger.WithComponent(log.ComponentSheets),
	}, nil
}

func newSheetsService(ctx context.Context, opts Options) (*gsheet.Service, error) {
	if len(opts.ClientOptions) > 0 {
		return gsheet.NewService(ctx, opts.ClientOptions...)
	}

	var credentialsJSON []byte
	switch {
	case strings.TrimSpace(opts.CredentialsJSON) != "":
		credentialsJSON = []byte(opts.CredentialsJSON)
	case opts.CredentialsFile != "":
		b, err := os.ReadFile(opts.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// Upsert rewrites the row holding row.TransactionID or appends a new one.
func (c *Client) Upsert(ctx context.Context, row ports.LedgerRow) (string, error) {
	ids, err := c.readIDs(ctx)
	if err != nil {
		return "", err
	}

	if len(ids) == 0 {
		if err := c.write(ctx, 1, ports.Header); err != nil {
			return "", fmt.Errorf("write header: %w", err)
		}
		ids = [][]any{ports.Header[:1]}
	}

	n := findRow(ids, row.TransactionID)
	if n == 0 {
		n = len(ids) + 1
	}
	if err := c.write(ctx, n, row.Values()); err != nil {
		return "", fmt.Errorf("write row %d: %w", n, err)
	}

	ref := c.rowRange(n)
	c.logger.InfoContext(ctx, "Ledger row written", log.FieldTransactionID, row.TransactionID, "ref", ref)
	return ref, nil
}

// Remove blanks the row for transactionID.
func (c *Client) Remove(ctx context.Context, transactionID int64) error {
	ids, err := c.readIDs(ctx)
	if err != nil {
		return err
	}
	n := findRow(ids, transactionID)
	if n == 0 {
		c.logger.DebugContext(ctx, "Ledger row already absent", log.FieldTransactionID, transactionID)
		return nil
	}
	rng := c.rowRange(n)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", rng, err)
	}
	c.logger.InfoContext(ctx, "Ledger row cleared", log.FieldTransactionID, transactionID, "ref", rng)
	return nil
}

func (c *Client) readIDs(ctx context.Context) ([][]any, error) {
	rng := fmt.Sprintf("%s!A:A", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return resp.Values, nil
}

func (c *Client) write(ctx context.Context, n int, values []any) error {
	vr := &gsheet.ValueRange{Values: [][]any{values}}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, c.rowRange(n), vr).
		ValueInputOption(valueInputOption).Context(ctx).Do()
	return err
}

func (c *Client) rowRange(n int) string {
	return fmt.Sprintf("%s!A%d:F%d", c.sheetName, n, n)
}

// findRow returns the 1-based row whose first cell equals id, or 0.
func findRow(values [][]any, id int64) int {
	want := strconv.FormatInt(id, 10)
	for i, row := range values {
		if len(row) == 0 {
			continue
		}
		if strings.TrimSpace(fmt.Sprint(row[0])) == want {
			return i + 1
		}
	}
	return 0
}
