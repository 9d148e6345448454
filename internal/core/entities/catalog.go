package entities

import (
	"strconv"
	"strings"

	"github.com/lamkw/datapipe/internal/core"
	"github.com/lamkw/datapipe/internal/feed"
	"github.com/lamkw/datapipe/internal/normalize"
)

// Field length limits from the catalog schema.
const (
	maxAuthorName = 100
	maxAuthorBio  = 500
	maxBookTitle  = 200
)

// Book price heuristic: popularity-scaled with a hard floor.
const bookPriceFloor = 5.0

func init() {
	registerAuthors()
	registerBooks()
	registerReviews()
}

func registerAuthors() {
	core.Register(core.EntityDefinition{
		Info: core.EntityInfo{
			Key:     "authors",
			Family:  "catalog",
			Label:   "Authors",
			RawFile: "user.json",
		},
		ReadRaw:      feed.ReadUsers,
		Derive:       deriveAuthor,
		Mandatory:    []string{"id"},
		DedupKey:     column("id"),
		CleanColumns: []string{"id", "name", "bio"},
		Columns:      []string{"id", "name", "bio"},
		NaturalKey:   column("id"),
	})
}

func registerBooks() {
	core.Register(core.EntityDefinition{
		Info: core.EntityInfo{
			Key:     "books",
			Family:  "catalog",
			Label:   "Books",
			RawFile: "posts.json",
		},
		ReadRaw:      feed.ReadPosts,
		Derive:       deriveBook,
		Mandatory:    []string{"id"},
		DedupKey:     column("id"),
		CleanColumns: []string{"id", "title", "author_id", "price"},
		Columns:      []string{"id", "title", "author_id", "price"},
		DecimalCols:  []string{"price"},
		NaturalKey:   column("id"),
		Refs: []core.RefSpec{
			{Column: "author_id", Parent: "authors", ParentKey: "id", OnMissing: core.RefReassign},
		},
	})
}

func registerReviews() {
	core.Register(core.EntityDefinition{
		Info: core.EntityInfo{
			Key:     "reviews",
			Family:  "catalog",
			Label:   "Reviews",
			RawFile: "comments.json",
		},
		ReadRaw:      feed.ReadComments,
		Derive:       deriveReview,
		Mandatory:    []string{"id"},
		DedupKey:     column("id"),
		CleanColumns: []string{"id", "book_id", "content", "rating"},
		Columns:      []string{"id", "book_id", "content", "rating"},
		NaturalKey:   column("id"),
		Refs: []core.RefSpec{
			{Column: "book_id", Parent: "books", ParentKey: "id", OnMissing: core.RefDrop},
		},
		ExportColumns: []string{"id", "book_id", "rating", "content"},
	})
}

// deriveAuthor builds an author record from a flattened user row. Name
// prefers "first last", then username, then a generated placeholder; bio
// joins whatever company/university details exist.
func deriveAuthor(r core.Row) core.Row {
	name := joinNonEmpty(" ",
		strings.TrimSpace(r["first_name"]),
		strings.TrimSpace(r["last_name"]),
	)
	if name == "" {
		name = strings.TrimSpace(r["username"])
	}
	if name == "" {
		name = "User " + r["id"]
	}

	bio := joinNonEmpty(" | ",
		strings.TrimSpace(r["company_title"]),
		strings.TrimSpace(r["company_name"]),
		strings.TrimSpace(r["university"]),
	)
	if bio == "" {
		bio = "No bio provided."
	}

	return core.Row{
		"id":   r["id"],
		"name": normalize.Truncate(name, maxAuthorName),
		"bio":  normalize.Truncate(bio, maxAuthorBio),
	}
}

// deriveBook builds a book record from a flattened post row. Price is
// synthetic: views/120 + likes/15 - dislikes/25, floored at 5.00.
func deriveBook(r core.Row) core.Row {
	title := normalize.Text(r["title"], "Untitled "+r["id"])

	views := floatValue(r["views"])
	likes := floatValue(r["likes"])
	dislikes := floatValue(r["dislikes"])
	price := views/120 + likes/15 - dislikes/25
	if price < bookPriceFloor {
		price = bookPriceFloor
	}

	return core.Row{
		"id":        r["id"],
		"title":     normalize.Truncate(title, maxBookTitle),
		"author_id": r["user_id"],
		"price":     normalize.DecimalFromFloat(price),
	}
}

// deriveReview builds a review record from a flattened comment row.
// Rating maps the likes count onto 1..5.
func deriveReview(r core.Row) core.Row {
	likes := int(floatValue(r["likes"]))
	return core.Row{
		"id":      r["id"],
		"book_id": r["post_id"],
		"content": normalize.Text(r["body"], "No content provided."),
		"rating":  strconv.Itoa(normalize.Clamp(1, 5, likes/2+1)),
	}
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

func floatValue(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}
