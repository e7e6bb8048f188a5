package api

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/damon-houk/cbr-exchange-rate/internal/domain/apperrors"
	"github.com/damon-houk/cbr-exchange-rate/internal/domain/entity"
	"golang.org/x/text/encoding/charmap"
)

const (
	// DefaultBaseURL is the cbr.ru dynamic rates endpoint
	DefaultBaseURL = "http://www.cbr.ru/scripts/XML_dynamic.asp"

	queryDateLayout  = "02/01/2006"
	recordDateLayout = "02.01.2006"

	// maxBodySize caps a feed response; a month of records is a few kilobytes
	maxBodySize = 4 << 20
)

// CBRAPIClient reads currency rate ranges from the Central Bank of Russia
type CBRAPIClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewCBRAPIClient creates a new client. A nil httpClient gets a 10 second timeout.
func NewCBRAPIClient(baseURL string, httpClient *http.Client) *CBRAPIClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: 10 * time.Second,
		}
	}

	return &CBRAPIClient{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

// valCurs is the feed document. Any root element is accepted; a document
// without Record children is an empty response.
type valCurs struct {
	Records []cbrRecord `xml:"Record"`
}

type cbrRecord struct {
	Date    string `xml:"Date,attr"`
	Nominal string `xml:"Nominal"`
	Value   string `xml:"Value"`
}

// BuildQueryURL returns the feed URL for the month ending on date.
// The feed skips non-trading days, so a month back always reaches a published rate.
func BuildQueryURL(baseURL string, date time.Time, currency string) string {
	return fmt.Sprintf("%s?date_req1=%s&date_req2=%s&VAL_NM_RQ=%s",
		baseURL,
		date.AddDate(0, -1, 0).Format(queryDateLayout),
		date.Format(queryDateLayout),
		url.QueryEscape(currency))
}

// QueryURL builds the feed URL against the client's base URL
func (c *CBRAPIClient) QueryURL(date time.Time, currency string) string {
	return BuildQueryURL(c.baseURL, date, currency)
}

// FetchRecords performs a single GET and decodes the records in feed order
func (c *CBRAPIClient) FetchRecords(ctx context.Context, reqURL string) ([]entity.ExchangeRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, apperrors.NewXML("failed to create request", err, apperrors.XMLDiagnostic{})
	}
	req.Header.Add("Accept", "application/xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewXML("failed to execute request", err, apperrors.XMLDiagnostic{})
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return nil, apperrors.NewXML("failed to read response body", err, apperrors.XMLDiagnostic{})
	}
	if len(body) > maxBodySize {
		return nil, apperrors.NewXML("feed response too large",
			fmt.Errorf("body exceeds %d bytes", maxBodySize), apperrors.XMLDiagnostic{})
	}

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewXML("feed returned error status",
			fmt.Errorf("status %d", resp.StatusCode), apperrors.XMLDiagnostic{})
	}

	doc, err := decodeValCurs(body)
	if err != nil {
		return nil, err
	}

	if len(doc.Records) == 0 {
		return nil, apperrors.New(apperrors.KindEmptyResponse, "empty API response")
	}

	records := make([]entity.ExchangeRecord, 0, len(doc.Records))
	for _, r := range doc.Records {
		date, err := time.Parse(recordDateLayout, strings.TrimSpace(r.Date))
		if err != nil {
			return nil, apperrors.NewXML(fmt.Sprintf("failed to parse record date '%s'", r.Date), err, apperrors.XMLDiagnostic{})
		}

		// 0 marks a missing or garbled nominal
		nominal, err := strconv.Atoi(strings.TrimSpace(r.Nominal))
		if err != nil {
			nominal = 0
		}

		records = append(records, entity.ExchangeRecord{
			Date:    date,
			Rate:    strings.TrimSpace(r.Value),
			Nominal: nominal,
		})
	}

	return records, nil
}

// decodeValCurs parses a feed document, transcoding windows-1251 when declared
func decodeValCurs(body []byte) (*valCurs, error) {
	decoder := xml.NewDecoder(bytes.NewReader(body))
	decoder.CharsetReader = charsetReader

	var doc valCurs
	if err := decoder.Decode(&doc); err != nil {
		line, column := decoder.InputPos()
		diag := apperrors.XMLDiagnostic{
			Line:    line,
			Column:  column,
			Message: err.Error(),
		}

		var syntaxErr *xml.SyntaxError
		if errors.As(err, &syntaxErr) {
			diag.Line = syntaxErr.Line
			diag.Message = syntaxErr.Msg
		}

		return nil, apperrors.NewXML("failed to decode feed response", err, diag)
	}

	return &doc, nil
}

func charsetReader(charset string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(charset) {
	case "windows-1251", "cp1251":
		return charmap.Windows1251.NewDecoder().Reader(input), nil
	default:
		return nil, fmt.Errorf("unknown charset: %s", charset)
	}
}
