// Package feed reads the catalog family's raw JSON feeds (users, posts,
// comments) and flattens them into pipeline rows. The feeds carry nested
// objects (company, reactions); flattening here keeps the rest of the
// pipeline uniform over flat columns.
package feed

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/lamkw/datapipe/internal/core"
)

// user mirrors the fields the cleaner consumes from the users feed.
type user struct {
	ID         json.Number `json:"id"`
	FirstName  string      `json:"firstName"`
	LastName   string      `json:"lastName"`
	Username   string      `json:"username"`
	University string      `json:"university"`
	Company    struct {
		Title string `json:"title"`
		Name  string `json:"name"`
	} `json:"company"`
}

type post struct {
	ID        json.Number `json:"id"`
	UserID    json.Number `json:"userId"`
	Title     string      `json:"title"`
	Views     json.Number `json:"views"`
	Reactions struct {
		Likes    json.Number `json:"likes"`
		Dislikes json.Number `json:"dislikes"`
	} `json:"reactions"`
}

type comment struct {
	ID     json.Number `json:"id"`
	PostID json.Number `json:"postId"`
	Body   string      `json:"body"`
	Likes  json.Number `json:"likes"`
}

// ReadUsers flattens the users feed. Columns: id, first_name, last_name,
// username, university, company_title, company_name.
func ReadUsers(path string) ([]core.Row, error) {
	var users []user
	if err := decodeFeed(path, "users", &users); err != nil {
		return nil, err
	}
	rows := make([]core.Row, len(users))
	for i, u := range users {
		rows[i] = core.Row{
			"id":            u.ID.String(),
			"first_name":    u.FirstName,
			"last_name":     u.LastName,
			"username":      u.Username,
			"university":    u.University,
			"company_title": u.Company.Title,
			"company_name":  u.Company.Name,
		}
	}
	return rows, nil
}

// ReadPosts flattens the posts feed. Columns: id, user_id, title, views,
// likes, dislikes.
func ReadPosts(path string) ([]core.Row, error) {
	var posts []post
	if err := decodeFeed(path, "posts", &posts); err != nil {
		return nil, err
	}
	rows := make([]core.Row, len(posts))
	for i, p := range posts {
		rows[i] = core.Row{
			"id":       p.ID.String(),
			"user_id":  p.UserID.String(),
			"title":    p.Title,
			"views":    numberOrZero(p.Views),
			"likes":    numberOrZero(p.Reactions.Likes),
			"dislikes": numberOrZero(p.Reactions.Dislikes),
		}
	}
	return rows, nil
}

// ReadComments flattens the comments feed. Columns: id, post_id, body,
// likes.
func ReadComments(path string) ([]core.Row, error) {
	var comments []comment
	if err := decodeFeed(path, "comments", &comments); err != nil {
		return nil, err
	}
	rows := make([]core.Row, len(comments))
	for i, c := range comments {
		rows[i] = core.Row{
			"id":      c.ID.String(),
			"post_id": c.PostID.String(),
			"body":    c.Body,
			"likes":   numberOrZero(c.Likes),
		}
	}
	return rows, nil
}

// decodeFeed reads a feed file that is either a bare JSON array or an
// object wrapping the array under key (the shape dummy-data exports
// use).
func decodeFeed(path, key string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, out); err == nil {
		return nil
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	raw, ok := wrapper[key]
	if !ok {
		return fmt.Errorf("parsing %s: no top-level array or %q key", path, key)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// numberOrZero renders a JSON number, defaulting absent values to "0".
func numberOrZero(n json.Number) string {
	if n.String() == "" {
		return "0"
	}
	return n.String()
}
