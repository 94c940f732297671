package egis

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/niksmo/egis-bridge/internal/core/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
)

var errUnsupportedCharset = errors.New("unsupported charset")

type (
	exceptionXML struct {
		Number      string `xml:"ErrorNumber"`
		Message     string `xml:"ErrorMessage"`
		Description string `xml:"ErrorDescription"`
	}

	resultHeaderXML struct {
		TotalResults string `xml:"TotalResults"`
		FirstResult  string `xml:"FirstResult"`
		LastResult   string `xml:"LastResult"`
	}

	itemXML struct {
		Identification struct {
			ProprietaryProductNumber      string `xml:"ProprietaryProductNumber"`
			ProprietaryProductDescription string `xml:"ProprietaryProductDescription"`
			ManufacturerName              struct {
				ID   string `xml:"id,attr"`
				Name string `xml:",chardata"`
			} `xml:"ManufacturerName"`
			ManufacturerProductNumber string `xml:"ManufacturerProductNumber"`
			GlobalProductNumber       string `xml:"GlobalProductNumber"`
			ProductGroupID            string `xml:"ProductGroupId"`
		} `xml:"ProductIdentification"`

		UnitPrice struct {
			PurchasePrice          string `xml:"PurchasePrice"`
			CurrencyCode           string `xml:"CurrencyCode"`
			DateTime               string `xml:"DateTime"`
			RecommendedRetailPrice string `xml:"RecommendedRetailPrice"`
		} `xml:"UnitPrice"`

		ImageURL string `xml:"ImageUrl"`
	}
)

// decodeResponse reads a SearchQueryResponse document. Item elements are
// collected wherever they appear.
func decodeResponse(r io.Reader) (domain.SearchResult, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charsetReader

	var (
		res       domain.SearchResult
		header    *resultHeaderXML
		exception *exceptionXML
		parents   []string
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return domain.SearchResult{}, &domain.CatalogError{
				Message: "invalid XML response", Err: err,
			}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			parent := ""
			if len(parents) != 0 {
				parent = parents[len(parents)-1]
			}

			switch {
			case t.Name.Local == "Exception":
				var e exceptionXML
				if err := dec.DecodeElement(&e, &t); err != nil {
					return domain.SearchResult{}, &domain.CatalogError{
						Message: "invalid exception element", Err: err,
					}
				}
				exception = &e
			case t.Name.Local == "Header" && parent == "Search":
				var h resultHeaderXML
				if err := dec.DecodeElement(&h, &t); err != nil {
					return domain.SearchResult{}, &domain.CatalogError{
						Message: "invalid header element", Err: err,
					}
				}
				header = &h
			case t.Name.Local == "Item":
				var it itemXML
				if err := dec.DecodeElement(&it, &t); err != nil {
					return domain.SearchResult{}, &domain.CatalogError{
						Message: "invalid item element", Err: err,
					}
				}
				res.Records = append(res.Records, it.record())
			default:
				parents = append(parents, t.Name.Local)
			}
		case xml.EndElement:
			if len(parents) != 0 {
				parents = parents[:len(parents)-1]
			}
		}
	}

	if exception != nil {
		return domain.SearchResult{}, &domain.CatalogError{
			Number:      strings.TrimSpace(exception.Number),
			Message:     strings.TrimSpace(exception.Message),
			Description: strings.TrimSpace(exception.Description),
		}
	}

	res.Total = len(res.Records)
	if header != nil {
		if n, ok := parseCount(header.TotalResults); ok {
			res.Total = n
		}
		res.FirstResult, _ = parseCount(header.FirstResult)
		res.LastResult, _ = parseCount(header.LastResult)
	}
	return res, nil
}

func (it itemXML) record() domain.ProductRecord {
	id := it.Identification
	price := it.UnitPrice
	return domain.ProductRecord{
		ProprietaryProductNumber:  strings.TrimSpace(id.ProprietaryProductNumber),
		Description:               strings.TrimSpace(id.ProprietaryProductDescription),
		ManufacturerID:            strings.TrimSpace(id.ManufacturerName.ID),
		ManufacturerName:          strings.TrimSpace(id.ManufacturerName.Name),
		ManufacturerProductNumber: strings.TrimSpace(id.ManufacturerProductNumber),
		GlobalProductNumber:       strings.TrimSpace(id.GlobalProductNumber),
		ProductGroupID:            strings.TrimSpace(id.ProductGroupID),
		PurchasePrice:             parsePrice(price.PurchasePrice),
		RecommendedRetailPrice:    parsePrice(price.RecommendedRetailPrice),
		Currency:                  strings.ToUpper(strings.TrimSpace(price.CurrencyCode)),
		PriceTimestamp:            parseTimestamp(price.DateTime),
		ImageURL:                  strings.TrimSpace(it.ImageURL),
	}
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "iso-8859-1", "iso8859-1", "latin1", "latin-1":
		return charmap.ISO8859_1.NewDecoder().Reader(input), nil
	case "iso-8859-15", "iso8859-15", "latin9", "latin-9":
		return charmap.ISO8859_15.NewDecoder().Reader(input), nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder().Reader(input), nil
	}
	return nil, fmt.Errorf("%w: %q", errUnsupportedCharset, label)
}

// parsePrice accepts both "1234.56" and "1.234,56". Anything unparsable is
// treated as an absent price.
func parsePrice(s string) decimal.NullDecimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.NullDecimal{}
	}

	dot, comma := strings.LastIndex(s, "."), strings.LastIndex(s, ",")
	switch {
	case comma >= 0 && dot >= 0 && comma > dot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case comma >= 0 && dot >= 0:
		s = strings.ReplaceAll(s, ",", "")
	case comma >= 0:
		s = strings.Replace(s, ",", ".", 1)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"02.01.2006 15:04:05",
	"02.01.2006 15:04",
	"2006-01-02",
	"02.01.2006",
}

func parseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func parseCount(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return n, true
}
