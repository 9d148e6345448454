package core_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/lamkw/datapipe/internal/core"
	_ "github.com/lamkw/datapipe/internal/core/entities"
	"github.com/lamkw/datapipe/internal/csv"
	"github.com/lamkw/datapipe/internal/store/memory"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testDirs(t *testing.T) core.Dirs {
	t.Helper()
	base := t.TempDir()
	dirs := core.Dirs{
		Raw:       filepath.Join(base, "raw"),
		Cleaned:   filepath.Join(base, "cleaned"),
		Formatted: filepath.Join(base, "formatted"),
		Exports:   filepath.Join(base, "exports"),
	}
	if err := os.MkdirAll(dirs.Raw, 0o755); err != nil {
		t.Fatal(err)
	}
	return dirs
}

func writeRaw(t *testing.T, dirs core.Dirs, name, data string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dirs.Raw, name), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
}

func writeCommerceRaw(t *testing.T, dirs core.Dirs) {
	t.Helper()
	writeRaw(t, dirs, "customers_raw.csv",
		"Full_Name,Email,Phone\n"+
			"Kit Wong,kit.wong1@example.com,+852 9123 4567\n"+
			"Alex Chan,\"  ALEX.CHAN5@gmail.com \",(852) 9123-4567\n"+
			"Alex Chan,alex.chan5@gmail.com,9123 4567\n"+
			"No Email,,91234567\n")
	writeRaw(t, dirs, "products_raw.csv",
		"SKU,Name,Price,Is_Active\n"+
			"SKU-001,NMN 32000,\" $1,299.00 \",TRUE\n"+
			"SKU-002,Fish Oil,HK$399,\n"+
			"SKU-002,Fish Oil Duplicate,99,false\n"+
			",No Sku,10,true\n")
	writeRaw(t, dirs, "orders_raw.csv",
		"Customer_Email,Product_SKU,Quantity,Order_Date,Note\n"+
			"kit.wong1@example.com,SKU-001, 2 ,31-12-2023,  first order\n"+
			"ALEX.CHAN5@GMAIL.COM,SKU-002,x,2023/11/05,VIP\n"+
			"kit.wong1@example.com,SKU-001,1,not-a-date,bad date\n"+
			"kit.wong1@example.com,SKU-999,1,2023-10-01,unknown product\n"+
			",SKU-001,1,2023-10-01,no email\n")
}

func writeCatalogRaw(t *testing.T, dirs core.Dirs) {
	t.Helper()
	writeRaw(t, dirs, "user.json", `[
		{"id": 1, "firstName": "Ada", "lastName": "Lovelace", "username": "ada",
		 "university": "Cambridge",
		 "company": {"title": "Engineer", "name": "Analytical Engines"}},
		{"id": 2, "username": "bob"},
		{"id": 2, "username": "bob-duplicate"},
		{"id": 3}
	]`)
	writeRaw(t, dirs, "posts.json", `{"posts": [
		{"id": 10, "userId": 1, "title": "  A Study in Scarlet  ", "views": 600,
		 "reactions": {"likes": 30, "dislikes": 0}},
		{"id": 11, "userId": 99, "title": "", "views": 0,
		 "reactions": {"likes": 0, "dislikes": 0}}
	], "total": 2}`)
	writeRaw(t, dirs, "comments.json", `{"comments": [
		{"id": 100, "postId": 10, "body": "Brilliant pacing", "likes": 20},
		{"id": 101, "postId": 999, "body": "orphaned", "likes": 0},
		{"id": 102, "postId": 11, "body": "", "likes": 3}
	]}`)
}

func readOut(t *testing.T, dir, name string) ([]string, []map[string]string) {
	t.Helper()
	header, rows, err := csv.ReadRows(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("reading %s: %v", name, err)
	}
	return header, rows
}

func findRow(t *testing.T, rows []map[string]string, col, val string) map[string]string {
	t.Helper()
	for _, r := range rows {
		if r[col] == val {
			return r
		}
	}
	t.Fatalf("no row with %s=%q in %v", col, val, rows)
	return nil
}

func TestCleanCommerce(t *testing.T) {
	dirs := testDirs(t)
	writeCommerceRaw(t, dirs)

	stats, err := core.CleanFamily(dirs, "commerce", testLogger())
	if err != nil {
		t.Fatalf("CleanFamily: %v", err)
	}
	if len(stats) != 3 {
		t.Fatalf("expected 3 entities, got %d", len(stats))
	}

	customers := stats[0]
	if customers.Entity != "customers" || customers.Processed != 4 ||
		customers.Dropped != 1 || customers.Deduped != 1 || customers.Kept != 2 {
		t.Errorf("unexpected customer stats: %+v", customers)
	}

	_, rows := readOut(t, dirs.Cleaned, "customers_cleaned.csv")
	alex := findRow(t, rows, "email", "alex.chan5@gmail.com")
	if alex["full_name"] != "Alex Chan" || alex["phone"] != "91234567" {
		t.Errorf("unexpected cleaned customer: %v", alex)
	}

	_, rows = readOut(t, dirs.Cleaned, "products_cleaned.csv")
	if len(rows) != 2 {
		t.Fatalf("expected 2 cleaned products, got %d", len(rows))
	}
	p1 := findRow(t, rows, "sku", "SKU-001")
	if p1["price"] != "1299.00" || p1["is_active"] != "true" {
		t.Errorf("unexpected cleaned product: %v", p1)
	}
	// Blank active flag means active; first duplicate of the sku wins.
	p2 := findRow(t, rows, "sku", "SKU-002")
	if p2["is_active"] != "true" || p2["name"] != "Fish Oil" {
		t.Errorf("unexpected cleaned product: %v", p2)
	}

	_, rows = readOut(t, dirs.Cleaned, "orders_cleaned.csv")
	if len(rows) != 3 {
		t.Fatalf("expected 3 cleaned orders, got %d", len(rows))
	}
	first := findRow(t, rows, "note", "first order")
	if first["quantity"] != "2" || first["order_date"] != "2023-12-31" {
		t.Errorf("unexpected cleaned order: %v", first)
	}
	vip := findRow(t, rows, "note", "VIP")
	if vip["quantity"] != "1" || vip["customer_email"] != "alex.chan5@gmail.com" {
		t.Errorf("unexpected cleaned order: %v", vip)
	}
}

func TestFormatCanonicalizesDecimals(t *testing.T) {
	dirs := testDirs(t)
	writeCommerceRaw(t, dirs)

	if _, err := core.CleanFamily(dirs, "commerce", testLogger()); err != nil {
		t.Fatal(err)
	}
	stats, err := core.FormatFamily(dirs, "commerce", testLogger())
	if err != nil {
		t.Fatalf("FormatFamily: %v", err)
	}
	// Format never adds or removes rows.
	for _, s := range stats {
		_, cleaned := readOut(t, dirs.Cleaned, s.Entity+"_cleaned.csv")
		if s.Rows != len(cleaned) {
			t.Errorf("%s: formatted %d rows from %d cleaned", s.Entity, s.Rows, len(cleaned))
		}
	}

	header, rows := readOut(t, dirs.Formatted, "products_formatted.csv")
	want := []string{"sku", "name", "price", "is_active"}
	for i, col := range want {
		if header[i] != col {
			t.Fatalf("formatted header = %v, want %v", header, want)
		}
	}
	p2 := findRow(t, rows, "sku", "SKU-002")
	if p2["price"] != "399.00" {
		t.Errorf("price = %q, want 399.00", p2["price"])
	}
}

func TestImportCommerceIdempotent(t *testing.T) {
	ctx := context.Background()
	dirs := testDirs(t)
	writeCommerceRaw(t, dirs)

	if _, err := core.CleanFamily(dirs, "commerce", testLogger()); err != nil {
		t.Fatal(err)
	}
	if _, err := core.FormatFamily(dirs, "commerce", testLogger()); err != nil {
		t.Fatal(err)
	}

	st := memory.New(core.ByFamily("commerce")...)
	stats, err := core.ImportFamily(ctx, dirs, st, "commerce", testLogger())
	if err != nil {
		t.Fatalf("ImportFamily: %v", err)
	}
	if stats[0].Inserted != 2 || stats[1].Inserted != 2 {
		t.Errorf("parent inserts = %d/%d, want 2/2", stats[0].Inserted, stats[1].Inserted)
	}
	orders := stats[2]
	// One order references an unknown sku and is dropped, not inserted.
	if orders.Processed != 3 || orders.Inserted != 2 || orders.DroppedRef != 1 {
		t.Errorf("unexpected order stats: %+v", orders)
	}

	// Second run over the same files inserts nothing.
	stats, err = core.ImportFamily(ctx, dirs, st, "commerce", testLogger())
	if err != nil {
		t.Fatalf("second ImportFamily: %v", err)
	}
	for _, s := range stats {
		if s.Inserted != 0 {
			t.Errorf("%s: re-run inserted %d rows", s.Entity, s.Inserted)
		}
	}
	if stats[0].Skipped != 2 {
		t.Errorf("customers skipped = %d, want 2", stats[0].Skipped)
	}
	// Orders have no natural key; the full-tuple check catches them.
	if stats[2].Skipped != 2 || stats[2].DroppedRef != 1 {
		t.Errorf("unexpected order re-run stats: %+v", stats[2])
	}

	stored, err := st.List(ctx, "orders")
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 2 {
		t.Errorf("stored orders = %d, want 2", len(stored))
	}
}

func TestCatalogPipeline(t *testing.T) {
	ctx := context.Background()
	dirs := testDirs(t)
	writeCatalogRaw(t, dirs)

	if _, err := core.CleanFamily(dirs, "catalog", testLogger()); err != nil {
		t.Fatal(err)
	}

	_, rows := readOut(t, dirs.Cleaned, "authors_cleaned.csv")
	if len(rows) != 3 {
		t.Fatalf("expected 3 cleaned authors, got %d", len(rows))
	}
	ada := findRow(t, rows, "id", "1")
	if ada["name"] != "Ada Lovelace" {
		t.Errorf("name = %q, want full name", ada["name"])
	}
	if ada["bio"] != "Engineer | Analytical Engines | Cambridge" {
		t.Errorf("bio = %q", ada["bio"])
	}
	bob := findRow(t, rows, "id", "2")
	if bob["name"] != "bob" || bob["bio"] != "No bio provided." {
		t.Errorf("username/bio fallback failed: %v", bob)
	}
	anon := findRow(t, rows, "id", "3")
	if anon["name"] != "User 3" {
		t.Errorf("placeholder name = %q, want %q", anon["name"], "User 3")
	}

	_, rows = readOut(t, dirs.Cleaned, "books_cleaned.csv")
	b10 := findRow(t, rows, "id", "10")
	if b10["title"] != "A Study in Scarlet" || b10["price"] != "7.00" {
		t.Errorf("unexpected cleaned book: %v", b10)
	}
	b11 := findRow(t, rows, "id", "11")
	// Empty title falls back, zero engagement hits the price floor.
	if b11["title"] != "Untitled 11" || b11["price"] != "5.00" {
		t.Errorf("unexpected cleaned book: %v", b11)
	}

	_, rows = readOut(t, dirs.Cleaned, "reviews_cleaned.csv")
	r100 := findRow(t, rows, "id", "100")
	if r100["rating"] != "5" {
		t.Errorf("rating = %q, want clamped 5", r100["rating"])
	}
	r102 := findRow(t, rows, "id", "102")
	if r102["rating"] != "2" || r102["content"] != "No content provided." {
		t.Errorf("unexpected cleaned review: %v", r102)
	}

	if _, err := core.FormatFamily(dirs, "catalog", testLogger()); err != nil {
		t.Fatal(err)
	}

	st := memory.New(core.ByFamily("catalog")...)
	stats, err := core.ImportFamily(ctx, dirs, st, "catalog", testLogger())
	if err != nil {
		t.Fatalf("ImportFamily: %v", err)
	}
	if stats[0].Inserted != 3 {
		t.Errorf("authors inserted = %d, want 3", stats[0].Inserted)
	}
	books := stats[1]
	// The book with an unknown author is reassigned, not dropped.
	if books.Inserted != 2 || books.Reassigned != 1 {
		t.Errorf("unexpected book stats: %+v", books)
	}
	reviews := stats[2]
	if reviews.Inserted != 2 || reviews.DroppedRef != 1 {
		t.Errorf("unexpected review stats: %+v", reviews)
	}

	storedBooks, err := st.List(ctx, "books")
	if err != nil {
		t.Fatal(err)
	}
	reassigned := findRow(t, rowsOf(storedBooks), "id", "11")
	if reassigned["author_id"] != "1" {
		t.Errorf("author_id = %q, want reassignment to first author", reassigned["author_id"])
	}

	// Reset clears the whole family; a fresh import fills it again.
	if err := core.Reset(ctx, st, "catalog", testLogger()); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	for _, entity := range []string{"authors", "books", "reviews"} {
		stored, err := st.List(ctx, entity)
		if err != nil {
			t.Fatal(err)
		}
		if len(stored) != 0 {
			t.Errorf("%s not cleared: %d rows remain", entity, len(stored))
		}
	}
	stats, err = core.ImportFamily(ctx, dirs, st, "catalog", testLogger())
	if err != nil {
		t.Fatal(err)
	}
	if stats[0].Inserted != 3 {
		t.Errorf("authors re-import after reset = %d, want 3", stats[0].Inserted)
	}
}

func TestExportCommerce(t *testing.T) {
	ctx := context.Background()
	dirs := testDirs(t)
	writeCommerceRaw(t, dirs)

	if _, err := core.CleanFamily(dirs, "commerce", testLogger()); err != nil {
		t.Fatal(err)
	}
	if _, err := core.FormatFamily(dirs, "commerce", testLogger()); err != nil {
		t.Fatal(err)
	}
	st := memory.New(core.ByFamily("commerce")...)
	if _, err := core.ImportFamily(ctx, dirs, st, "commerce", testLogger()); err != nil {
		t.Fatal(err)
	}

	stats, err := core.ExportFamily(ctx, dirs, st, "commerce", testLogger())
	if err != nil {
		t.Fatalf("ExportFamily: %v", err)
	}
	if stats[0].Rows != 2 || stats[2].Rows != 2 {
		t.Errorf("unexpected export counts: %+v", stats)
	}

	header, rows := readOut(t, dirs.Exports, "customers_export.csv")
	want := []string{"full_name", "email", "phone", "created_at"}
	for i, col := range want {
		if header[i] != col {
			t.Fatalf("export header = %v, want %v", header, want)
		}
	}
	kit := findRow(t, rows, "email", "kit.wong1@example.com")
	if kit["created_at"] == "" {
		t.Error("export should carry the store-assigned created_at")
	}

	header, _ = readOut(t, dirs.Exports, "orders_export.csv")
	if len(header) != 5 || header[0] != "customer_email" {
		t.Errorf("unexpected orders export header: %v", header)
	}
}

func TestMissingInputs(t *testing.T) {
	ctx := context.Background()
	dirs := testDirs(t)

	// Clean with no raw files at all.
	if _, err := core.CleanFamily(dirs, "commerce", testLogger()); !errors.Is(err, core.ErrMissingInput) {
		t.Errorf("CleanFamily error = %v, want ErrMissingInput", err)
	}

	// Format with no cleaned files.
	if _, err := core.FormatFamily(dirs, "commerce", testLogger()); !errors.Is(err, core.ErrMissingInput) {
		t.Errorf("FormatFamily error = %v, want ErrMissingInput", err)
	}

	// Import with no formatted files.
	st := memory.New(core.ByFamily("commerce")...)
	if _, err := core.ImportFamily(ctx, dirs, st, "commerce", testLogger()); !errors.Is(err, core.ErrMissingInput) {
		t.Errorf("ImportFamily error = %v, want ErrMissingInput", err)
	}

	// Unknown family is its own error, not a missing input.
	if _, err := core.CleanFamily(dirs, "inventory", testLogger()); err == nil || errors.Is(err, core.ErrMissingInput) {
		t.Errorf("unknown family error = %v", err)
	}
}

func rowsOf(rows []core.Row) []map[string]string {
	out := make([]map[string]string, len(rows))
	for i, r := range rows {
		out[i] = map[string]string(r)
	}
	return out
}
