// import-dataset builds the read-only catalog the bot ships with. It applies
// docs/schema.sql and upserts novels, reviews and their links from CSV
// dumps; the bot itself never writes to the catalog.
package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"novelbible/pkg/database"
)

func main() {
	var (
		novelsIn  = flag.String("novels", "data/novels.csv", "input CSV path for novels")
		reviewsIn = flag.String("reviews", "data/reviews.csv", "input CSV path for reviews")
		linksIn   = flag.String("links", "data/novel_review_map.csv", "input CSV path for novel-review links")
		dbOut     = flag.String("db", "", "output database path (default: runtime location)")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	cfg := database.DefaultConfig()
	cfg.ResourcePath = "" // building the catalog, nothing to seed from
	if *dbOut != "" {
		cfg.Path = *dbOut
	}

	db := database.MustOpen(cfg)
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	if err := importNovels(ctx, db, *novelsIn); err != nil {
		log.Fatalf("import novels failed: %v", err)
	}
	if err := importReviews(ctx, db, *reviewsIn); err != nil {
		log.Fatalf("import reviews failed: %v", err)
	}
	if err := importLinks(ctx, db, *linksIn); err != nil {
		log.Fatalf("import links failed: %v", err)
	}

	log.Printf("✅ catalog built at %s", cfg.Path)
}

func importNovels(ctx context.Context, db *sql.DB, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := readHeader(r)
	if err != nil {
		return err
	}

	stmt, err := db.PrepareContext(ctx, `
		INSERT INTO novels (id, title, author, platform, aliases)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		  title = excluded.title,
		  author = excluded.author,
		  platform = excluded.platform,
		  aliases = excluded.aliases
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	count := 0
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		id, err := strconv.ParseInt(field(header, row, "id"), 10, 64)
		if err != nil {
			return fmt.Errorf("novel row %d: bad id: %w", count+1, err)
		}
		title := field(header, row, "title")
		if title == "" {
			return fmt.Errorf("novel %d: empty title", id)
		}

		if _, err := stmt.ExecContext(ctx, id, title,
			nullable(field(header, row, "author")),
			nullable(field(header, row, "platform")),
			nullable(field(header, row, "aliases")),
		); err != nil {
			return fmt.Errorf("insert novel %d: %w", id, err)
		}
		count++
	}

	log.Printf("imported %d novels from %s", count, path)
	return nil
}

func importReviews(ctx context.Context, db *sql.DB, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := readHeader(r)
	if err != nil {
		return err
	}

	stmt, err := db.PrepareContext(ctx, `
		INSERT INTO reviews (id, reviewer, source_url, review_date, category, attributes)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		  reviewer = excluded.reviewer,
		  source_url = excluded.source_url,
		  review_date = excluded.review_date,
		  category = excluded.category,
		  attributes = excluded.attributes
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	count, skipped := 0, 0
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		id, err := strconv.ParseInt(field(header, row, "id"), 10, 64)
		if err != nil {
			return fmt.Errorf("review row %d: bad id: %w", count+1, err)
		}

		attrs := strings.TrimSpace(field(header, row, "attributes"))
		if attrs == "" {
			attrs = "{}"
		}
		if !json.Valid([]byte(attrs)) {
			// one bad record should not abort the build
			log.Printf("review %d: invalid attributes JSON, skipped", id)
			skipped++
			continue
		}

		if _, err := stmt.ExecContext(ctx, id,
			nullable(field(header, row, "reviewer")),
			nullable(field(header, row, "source_url")),
			nullable(field(header, row, "review_date")),
			nullable(field(header, row, "category")),
			attrs,
		); err != nil {
			return fmt.Errorf("insert review %d: %w", id, err)
		}
		count++
	}

	log.Printf("imported %d reviews from %s (%d skipped)", count, path, skipped)
	return nil
}

func importLinks(ctx context.Context, db *sql.DB, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := readHeader(r)
	if err != nil {
		return err
	}

	stmt, err := db.PrepareContext(ctx, `
		INSERT INTO novel_review_map (novel_id, review_id)
		VALUES (?, ?)
		ON CONFLICT(novel_id, review_id) DO NOTHING
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	count := 0
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		novelID, err := strconv.ParseInt(field(header, row, "novel_id"), 10, 64)
		if err != nil {
			return fmt.Errorf("link row %d: bad novel_id: %w", count+1, err)
		}
		reviewID, err := strconv.ParseInt(field(header, row, "review_id"), 10, 64)
		if err != nil {
			return fmt.Errorf("link row %d: bad review_id: %w", count+1, err)
		}

		if _, err := stmt.ExecContext(ctx, novelID, reviewID); err != nil {
			return fmt.Errorf("insert link %d->%d: %w", novelID, reviewID, err)
		}
		count++
	}

	log.Printf("imported %d links from %s", count, path)
	return nil
}

func readHeader(r *csv.Reader) (map[string]int, error) {
	row, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	header := make(map[string]int, len(row))
	for i, name := range row {
		header[strings.TrimSpace(strings.ToLower(name))] = i
	}
	return header, nil
}

func field(header map[string]int, row []string, name string) string {
	i, ok := header[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
