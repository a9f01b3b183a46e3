// Package bot maps inbound chat commands onto the catalog search, the
// review renderer and the glossary, carrying the per-user follow-up state
// that lets a bare number refer back to the previous search.
package bot

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"novelbible/internal/novel"
	"novelbible/internal/render"
	"novelbible/internal/session"
	"novelbible/internal/terms"
	"novelbible/pkg/models"
	"novelbible/pkg/utils"
)

const (
	ScanCommand  = "扫书"
	StatsCommand = "扫书统计"

	scanUsage = "请输入书名或作者进行查询，例如: /扫书 极品家丁"
)

// Responder delivers a dispatch's output to whatever channel the command
// came from. ReplyBatch sends one size-bounded group of rendered entries as
// a single outbound message.
type Responder interface {
	Reply(text string) error
	ReplyBatch(entries []string) error
}

// BatchPacer marks a Responder whose delivery channel is rate limited, so
// successive batches need a pause between sends. Buffering responders like
// Collector return everything in one response and are never paced.
type BatchPacer interface {
	PaceBatches() bool
}

type Request struct {
	Room string
	User string
	Text string
}

type Dispatcher struct {
	Repo     *novel.Repo
	Sessions *session.Store
	Renderer *render.Renderer
	Terms    *terms.Index
	Config   utils.BotConfig
	Logger   *log.Logger

	sleep func(time.Duration) // test hook
}

func NewDispatcher(repo *novel.Repo, sessions *session.Store, renderer *render.Renderer, idx *terms.Index, cfg utils.BotConfig) *Dispatcher {
	return &Dispatcher{
		Repo:     repo,
		Sessions: sessions,
		Renderer: renderer,
		Terms:    idx,
		Config:   cfg,
		Logger:   log.Default(),
		sleep:    time.Sleep,
	}
}

// IsCommand reports whether text starts with a token the dispatcher knows.
// A leading slash is tolerated.
func IsCommand(text string) bool {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return false
	}
	cmd := strings.TrimPrefix(fields[0], "/")
	return cmd == ScanCommand || cmd == StatsCommand || terms.IsCategory(cmd)
}

// Dispatch handles one inbound command. Rooms outside the whitelist are
// ignored without a reply. Every failure degrades into a plain message; the
// returned error only reports a broken delivery channel.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request, resp Responder) error {
	if !d.Config.RoomAllowed(req.Room) {
		return nil
	}

	fields := strings.Fields(req.Text)
	if len(fields) == 0 {
		return nil
	}
	cmd := strings.TrimPrefix(fields[0], "/")
	args := fields[1:]

	switch {
	case cmd == ScanCommand:
		return d.handleScan(ctx, req.User, args, resp)
	case cmd == StatsCommand:
		return d.handleStats(ctx, resp)
	case terms.IsCategory(cmd):
		return d.handleTerm(cmd, args, resp)
	}
	return resp.Reply("未知指令。可用指令：扫书、扫书统计、防御、郁闷、雷点、术语。")
}

func (d *Dispatcher) handleTerm(category string, args []string, resp Responder) error {
	if len(args) == 0 {
		return resp.Reply(fmt.Sprintf("请输入要查询的%s术语，或输入 '列表' 查看所有。", category))
	}
	return resp.Reply(d.Terms.Lookup(category, strings.Join(args, " ")))
}

func (d *Dispatcher) handleStats(ctx context.Context, resp Responder) error {
	stats, err := d.Repo.Stats(ctx)
	if err != nil {
		d.Logger.Printf("stats query failed: %v", err)
		return resp.Reply("统计信息暂时不可用。")
	}
	return resp.Reply(fmt.Sprintf("📊 扫书宝典统计信息：\n共收录作品：%d 部\n共收录扫书记录：%d 条",
		stats.Novels, stats.Reviews))
}

func (d *Dispatcher) handleScan(ctx context.Context, userID string, args []string, resp Responder) error {
	if len(args) == 0 {
		return resp.Reply(scanUsage)
	}

	// a trailing number after the keyword jumps straight to that result;
	// only plain digits count, a signed token stays part of the query
	directIdx := -1
	query := strings.Join(args, " ")
	if last := args[len(args)-1]; len(args) > 1 && allDigits(last) {
		if n, err := strconv.Atoi(last); err == nil && n > 0 {
			directIdx = n - 1
			query = strings.Join(args[:len(args)-1], " ")
		}
	}

	state := d.Sessions.GetOrCreate(userID)

	// a bare number selects from the previous search when it can
	if directIdx < 0 && allDigits(query) {
		if n, err := strconv.Atoi(query); err == nil && n > 0 {
			idx := n - 1
			if idx < len(state.Results) {
				hit := state.Results[idx]
				d.Logger.Printf("user %s picked result %d (novel %d)", userID, n, hit.ID)
				return d.showDetails(ctx, hit.ID, resp)
			}
			d.Logger.Printf("user %s picked index %d outside session results (%d), treating as query",
				userID, n, len(state.Results))
		}
	}

	return d.searchNovels(ctx, userID, query, directIdx, resp)
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (d *Dispatcher) searchNovels(ctx context.Context, userID, query string, directIdx int, resp Responder) error {
	results, err := d.Repo.Search(ctx, query, novel.DefaultSearchLimit)
	if err != nil {
		d.Logger.Printf("search %q failed: %v", query, err)
		return resp.Reply("查询失败，请稍后再试。")
	}

	if len(results) == 0 {
		// a miss clears the session: stale indexes must not resolve
		d.Sessions.Set(userID, nil, query)
		return resp.Reply(fmt.Sprintf("未找到与 '%s' 相关的书籍。", query))
	}

	hits := make([]models.SearchHit, 0, len(results))
	for _, n := range results {
		hits = append(hits, models.SearchHit{ID: n.ID, Title: n.Title})
	}
	d.Sessions.Set(userID, hits, query)

	if directIdx >= 0 {
		if directIdx < len(results) {
			return d.showDetails(ctx, results[directIdx].ID, resp)
		}
		// out of range: fall through to the standard display, so a lone
		// match still renders directly
		d.Logger.Printf("direct index %d outside %d results for %q", directIdx+1, len(results), query)
	}

	if len(results) == 1 {
		return d.showDetails(ctx, results[0].ID, resp)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "找到以下与 '%s' 相关的书籍：\n", query)
	for i, n := range results {
		author := n.Author
		if author == "" {
			author = "未知"
		}
		fmt.Fprintf(&b, "%d. 《%s》 - %s\n", i+1, n.Title, author)
	}
	b.WriteString("\n请输入 '/扫书 <序号>' 查看详细扫书记录。")
	return resp.Reply(b.String())
}

func (d *Dispatcher) showDetails(ctx context.Context, novelID int64, resp Responder) error {
	n, err := d.Repo.GetByID(ctx, novelID)
	if err != nil {
		d.Logger.Printf("novel %d lookup failed: %v", novelID, err)
		return resp.Reply("查询失败，请稍后再试。")
	}
	if n == nil {
		return resp.Reply("错误：找不到该书籍信息。")
	}

	raw, err := d.Repo.ReviewsFor(ctx, novelID, d.Config.MaxRecordsPerBook)
	if err != nil {
		d.Logger.Printf("novel %d reviews failed: %v", novelID, err)
		return resp.Reply("查询失败，请稍后再试。")
	}

	pace := false
	if p, ok := resp.(BatchPacer); ok {
		pace = p.PaceBatches()
	}

	batches := d.Renderer.Render(*n, raw)
	for i, batch := range batches {
		if i > 0 && pace && d.Config.BatchDelay > 0 {
			// fixed pause between batches for channel rate limits
			d.sleep(d.Config.BatchDelay)
		}
		if err := resp.ReplyBatch(batch); err != nil {
			return err
		}
	}
	return nil
}
