package sheets

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"uniform-inspection/internal/entity"
)

// ItfSheets appends compliance records to a Google Sheets ledger. The sink is
// strictly best-effort: a client without credentials is inert and every
// append on it returns false without any network call.
type ItfSheets interface {
	Available() bool
	AppendRecord(ctx context.Context, record entity.ComplianceRecord) bool
}

type sheetsClient struct {
	service       *sheetsapi.Service
	spreadsheetID string
	sheetName     string
	log           *logrus.Logger
}

func New(log *logrus.Logger) ItfSheets {
	sheetName := os.Getenv("GOOGLE_SHEETS_NAME")
	if sheetName == "" {
		sheetName = "Registros"
	}

	c := &sheetsClient{
		spreadsheetID: os.Getenv("GOOGLE_SHEETS_SPREADSHEET_ID"),
		sheetName:     sheetName,
		log:           log,
	}

	if c.spreadsheetID == "" {
		log.Warn("Google Sheets spreadsheet ID not configured, remote ledger disabled")
		return c
	}

	service, err := newService(log)
	if err != nil {
		log.Errorf("Failed to create Google Sheets service: %v", err)
		return c
	}

	c.service = service
	return c
}

// newService resolves credentials: an inline service-account payload from the
// environment wins over a credential file path. Neither resolving leaves the
// sink inert.
func newService(log *logrus.Logger) (*sheetsapi.Service, error) {
	ctx := context.Background()

	if inline := os.Getenv("GOOGLE_SERVICE_ACCOUNT"); inline != "" {
		log.Info("Using Google service account from environment")

		creds, err := google.CredentialsFromJSON(ctx, []byte(inline), sheetsapi.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("invalid inline service account: %w", err)
		}

		return sheetsapi.NewService(ctx, option.WithCredentials(creds))
	}

	credentialsFile := os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE")
	if credentialsFile == "" {
		credentialsFile = "credentials/service-account.json"
	}

	if _, err := os.Stat(credentialsFile); err != nil {
		return nil, fmt.Errorf("service account file not found: %s", credentialsFile)
	}

	log.Info("Using Google service account from file")

	return sheetsapi.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheetsapi.SpreadsheetsScope),
	)
}

func (c *sheetsClient) Available() bool {
	return c.service != nil && c.spreadsheetID != ""
}

func (c *sheetsClient) AppendRecord(ctx context.Context, record entity.ComplianceRecord) bool {
	if !c.Available() {
		return false
	}

	row := record.Row()
	values := make([]interface{}, len(row))
	for i, v := range row {
		values[i] = v
	}

	valueRange := &sheetsapi.ValueRange{
		Values: [][]interface{}{values},
	}

	result, err := c.service.Spreadsheets.Values.
		Append(c.spreadsheetID, fmt.Sprintf("%s!A:F", c.sheetName), valueRange).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		c.log.WithFields(logrus.Fields{
			"spreadsheet_id": c.spreadsheetID,
			"sheet":          c.sheetName,
			"error":          err.Error(),
		}).Error("Failed to append record to Google Sheets")
		return false
	}

	updatedCells := int64(0)
	if result.Updates != nil {
		updatedCells = result.Updates.UpdatedCells
	}

	c.log.WithFields(logrus.Fields{
		"spreadsheet_id": c.spreadsheetID,
		"sheet":          c.sheetName,
		"updated_cells":  updatedCells,
	}).Info("Record appended to Google Sheets")

	return true
}
