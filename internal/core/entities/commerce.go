package entities

import (
	"strconv"
	"strings"

	"github.com/lamkw/datapipe/internal/core"
	"github.com/lamkw/datapipe/internal/normalize"
)

func init() {
	registerCustomers()
	registerProducts()
	registerOrders()
}

func registerCustomers() {
	core.Register(core.EntityDefinition{
		Info: core.EntityInfo{
			Key:     "customers",
			Family:  "commerce",
			Label:   "Customers",
			RawFile: "customers_raw.csv",
		},
		Fields: []core.FieldSpec{
			{Name: "full_name", Normalizer: trim},
			{Name: "email", Normalizer: normalize.Email},
			{Name: "phone", Normalizer: normalize.Phone},
		},
		Mandatory:    []string{"email"},
		DedupKey:     column("email"),
		CleanColumns: []string{"full_name", "email", "phone"},
		Columns:      []string{"full_name", "email", "phone"},
		NaturalKey:   column("email"),
		ExportColumns: []string{
			"full_name", "email", "phone", "created_at",
		},
	})
}

func registerProducts() {
	core.Register(core.EntityDefinition{
		Info: core.EntityInfo{
			Key:     "products",
			Family:  "commerce",
			Label:   "Products",
			RawFile: "products_raw.csv",
		},
		Fields: []core.FieldSpec{
			{Name: "sku", Normalizer: trim},
			{Name: "name", Normalizer: trim},
			{Name: "price", Normalizer: normalize.Price},
			{Name: "is_active", Normalizer: boolString},
		},
		Mandatory:    []string{"sku"},
		DedupKey:     column("sku"),
		CleanColumns: []string{"sku", "name", "price", "is_active"},
		Columns:      []string{"sku", "name", "price", "is_active"},
		DecimalCols:  []string{"price"},
		NaturalKey:   column("sku"),
		ExportColumns: []string{
			"sku", "name", "price", "is_active", "created_at",
		},
	})
}

func registerOrders() {
	core.Register(core.EntityDefinition{
		Info: core.EntityInfo{
			Key:     "orders",
			Family:  "commerce",
			Label:   "Orders",
			RawFile: "orders_raw.csv",
		},
		Fields: []core.FieldSpec{
			{Name: "customer_email", Normalizer: normalize.Email},
			{Name: "product_sku", Normalizer: trim},
			{Name: "quantity", Normalizer: quantity},
			{Name: "order_date", Normalizer: normalize.Date},
			{Name: "note", Normalizer: trim},
		},
		Mandatory:    []string{"customer_email", "product_sku", "order_date"},
		CleanColumns: []string{"customer_email", "product_sku", "quantity", "order_date", "note"},
		Columns:      []string{"customer_email", "product_sku", "quantity", "order_date", "note"},
		// Orders carry no natural key; identity is the full tuple.
		TupleKey: func(r core.Row) string {
			return strings.Join([]string{
				r["customer_email"], r["product_sku"], r["quantity"], r["order_date"], r["note"],
			}, "\x1f")
		},
		Refs: []core.RefSpec{
			{Column: "customer_email", Parent: "customers", ParentKey: "email", OnMissing: core.RefDrop},
			{Column: "product_sku", Parent: "products", ParentKey: "sku", OnMissing: core.RefDrop},
		},
	})
}

func trim(s string) string {
	return strings.TrimSpace(s)
}

// boolString canonicalizes messy active flags to "true"/"false" so the
// intermediate files carry one spelling.
func boolString(s string) string {
	return strconv.FormatBool(normalize.Bool(s))
}

// quantity parses an order quantity, defaulting to 1 when blank or
// unparseable.
func quantity(s string) string {
	return strconv.Itoa(normalize.PositiveInt(s, 1))
}

// column returns a KeyFunc reading a single column.
func column(name string) core.KeyFunc {
	return func(r core.Row) string { return r[name] }
}
