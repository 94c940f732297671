package schema

import (
	"time"

	"github.com/hamba/avro/v2"
)

const ImportedItemSchemaTextV1 = `{
	"type": "record",
	"namespace": "egis.items",
	"name": "imported_item",
	"fields" : [
		{"name": "report_id", "type": "string"},
		{"name": "item_code", "type": "string"},
		{"name": "manufacturer_product_number", "type": "string"},
		{"name": "status", "type": "string"},
		{"name": "price", "type": {
			"type": "record",
			"name": "item_price",
			"fields": [
				{"name": "selling_price_list", "type": "string"},
				{"name": "selling_rate", "type": "string"},
				{"name": "retail_price_list", "type": ["null", "string"], "default": null},
				{"name": "retail_rate", "type": ["null", "string"], "default": null},
				{"name": "currency", "type": "string"}
			]
		}},
		{"name": "imported_at", "type": {"type": "long", "logicalType": "timestamp-millis"}}
	]
}`

type (
	// ImportedItemV1 announces an item created or updated by an import.
	// Rates are decimal strings.
	ImportedItemV1 struct {
		ReportID                  string          `avro:"report_id"`
		ItemCode                  string          `avro:"item_code"`
		ManufacturerProductNumber string          `avro:"manufacturer_product_number"`
		Status                    string          `avro:"status"`
		Price                     ImportedPriceV1 `avro:"price"`
		ImportedAt                time.Time       `avro:"imported_at"`
	}

	ImportedPriceV1 struct {
		SellingPriceList string  `avro:"selling_price_list"`
		SellingRate      string  `avro:"selling_rate"`
		RetailPriceList  *string `avro:"retail_price_list"`
		RetailRate       *string `avro:"retail_rate"`
		Currency         string  `avro:"currency"`
	}
)

func ImportedItemV1Avro() avro.Schema {
	return avro.MustParse(ImportedItemSchemaTextV1)
}
