// export-dataset dumps the catalog back to CSV, the mirror of
// import-dataset. Read-only.
package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"novelbible/pkg/database"
)

func main() {
	var (
		novelsOut  = flag.String("novels", "data/novels.csv", "output CSV path for novels")
		reviewsOut = flag.String("reviews", "data/reviews.csv", "output CSV path for reviews")
		linksOut   = flag.String("links", "data/novel_review_map.csv", "output CSV path for novel-review links")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	cfg := database.DefaultConfig()
	cfg.ResourcePath = ""
	db := database.MustOpen(cfg)
	defer db.Close()

	if err := exportNovels(ctx, db, *novelsOut); err != nil {
		log.Fatalf("export novels failed: %v", err)
	}
	if err := exportReviews(ctx, db, *reviewsOut); err != nil {
		log.Fatalf("export reviews failed: %v", err)
	}
	if err := exportLinks(ctx, db, *linksOut); err != nil {
		log.Fatalf("export links failed: %v", err)
	}

	log.Printf("✅ exported catalog to %s, %s, %s", *novelsOut, *reviewsOut, *linksOut)
}

func exportNovels(ctx context.Context, db *sql.DB, outPath string) error {
	w, f, err := openWriter(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := w.Write([]string{"id", "title", "author", "platform", "aliases"}); err != nil {
		return err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, title, author, platform, aliases
		FROM novels
		ORDER BY id
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id       int64
			title    string
			author   sql.NullString
			platform sql.NullString
			aliases  sql.NullString
		)
		if err := rows.Scan(&id, &title, &author, &platform, &aliases); err != nil {
			return err
		}
		if err := w.Write([]string{
			strconv.FormatInt(id, 10), title,
			author.String, platform.String, aliases.String,
		}); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}

func exportReviews(ctx context.Context, db *sql.DB, outPath string) error {
	w, f, err := openWriter(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := w.Write([]string{"id", "reviewer", "source_url", "review_date", "category", "attributes"}); err != nil {
		return err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, reviewer, source_url, review_date, category, attributes
		FROM reviews
		ORDER BY id
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id         int64
			reviewer   sql.NullString
			sourceURL  sql.NullString
			reviewDate sql.NullString
			category   sql.NullString
			attributes string
		)
		if err := rows.Scan(&id, &reviewer, &sourceURL, &reviewDate, &category, &attributes); err != nil {
			return err
		}
		if err := w.Write([]string{
			strconv.FormatInt(id, 10),
			reviewer.String, sourceURL.String, reviewDate.String, category.String,
			attributes,
		}); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}

func exportLinks(ctx context.Context, db *sql.DB, outPath string) error {
	w, f, err := openWriter(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := w.Write([]string{"novel_id", "review_id"}); err != nil {
		return err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT novel_id, review_id
		FROM novel_review_map
		ORDER BY novel_id, review_id
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var novelID, reviewID int64
		if err := rows.Scan(&novelID, &reviewID); err != nil {
			return err
		}
		if err := w.Write([]string{
			strconv.FormatInt(novelID, 10),
			strconv.FormatInt(reviewID, 10),
		}); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}

func openWriter(outPath string) (*csv.Writer, *os.File, error) {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.Create(outPath)
	if err != nil {
		return nil, nil, err
	}
	return csv.NewWriter(f), f, nil
}
