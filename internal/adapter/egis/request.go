package egis

import (
	"encoding/xml"
	"strings"

	"github.com/niksmo/egis-bridge/internal/core/domain"
	"github.com/shopspring/decimal"
)

const (
	queryNamespace   = "http://www.egis-online.de/EBC/schema/SearchQuery"
	xsiNamespace     = "http://www.w3.org/2001/XMLSchema-instance"
	queryXSD         = queryNamespace + " SearchQuery.xsd"
	protocolVersion  = "1.00"
	generationLayout = "2006-01-02 15:04:05.000000"
	defaultStartRow  = 1
)

type (
	searchQuery struct {
		XMLName        xml.Name          `xml:"http://www.egis-online.de/EBC/schema/SearchQuery SearchQuery"`
		XSI            string            `xml:"xmlns:xsi,attr"`
		SchemaLocation string            `xml:"xsi:schemaLocation,attr"`
		Header         transactionHeader `xml:"TransactionHeader"`
		Query          query             `xml:"Search>Query"`
	}

	transactionHeader struct {
		VersionID          string `xml:"VersionId"`
		GenerationDateTime string `xml:"GenerationDateTime"`
		ERP                string `xml:"ERP"`
		Login              string `xml:"Login"`
		Password           string `xml:"Password"`
	}

	query struct {
		SearchTerm       string        `xml:"SearchTerm,omitempty"`
		Options          searchOptions `xml:"SearchOptions"`
		DistributorName  []string      `xml:"DistributorName"`
		ManufacturerName []string      `xml:"ManufacturerName"`
		ProductGroupID   []string      `xml:"ProductGroupId"`
		StartRow         int           `xml:"Pagination>StartRow"`
	}

	searchOptions struct {
		OnlyActive        bool   `xml:"OnlyActive"`
		OnlyStocked       bool   `xml:"OnlyStocked"`
		OnlyInDescription bool   `xml:"OnlyInDescription"`
		MinPrice          string `xml:"MinPrice"`
		MaxPrice          string `xml:"MaxPrice"`
	}
)

func (c *Client) buildRequest(f domain.SearchFilter, startRow int) ([]byte, error) {
	if startRow < 1 {
		startRow = defaultStartRow
	}

	q := searchQuery{
		XSI:            xsiNamespace,
		SchemaLocation: queryXSD,
		Header: transactionHeader{
			VersionID:          protocolVersion,
			GenerationDateTime: c.now().Format(generationLayout),
			ERP:                c.erpName,
			Login:              c.user,
			Password:           c.password,
		},
		Query: query{
			SearchTerm: strings.TrimSpace(f.Term),
			Options: searchOptions{
				OnlyActive:        f.OnlyActive,
				OnlyStocked:       f.OnlyStocked,
				OnlyInDescription: f.OnlyInDescription,
				MinPrice:          formatPrice(f.MinPrice),
				MaxPrice:          formatPrice(f.MaxPrice),
			},
			DistributorName:  elementList(f.Distributors),
			ManufacturerName: elementList(f.Manufacturers),
			ProductGroupID:   elementList(f.ProductGroups),
			StartRow:         startRow,
		},
	}

	body, err := xml.Marshal(q)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}

// elementList keeps an empty list present on the wire as one empty element.
func elementList(vs []string) []string {
	if len(vs) == 0 {
		return []string{""}
	}
	return vs
}

func formatPrice(p decimal.NullDecimal) string {
	if !p.Valid {
		return ""
	}
	return p.Decimal.String()
}
