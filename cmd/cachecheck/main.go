package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"seatkeep/internal/shared/config"
	"seatkeep/internal/shared/constants"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

// CheckResult is the outcome of reading one cached view twice
type CheckResult struct {
	Name       string        `json:"name"`
	Path       string        `json:"path"`
	CacheKey   string        `json:"cache_key"`
	StatusCode int           `json:"status_code"`
	FirstRead  time.Duration `json:"first_read"`
	SecondRead time.Duration `json:"second_read"`
	Cached     bool          `json:"cached"`
	Error      string        `json:"error,omitempty"`
}

// Success reports whether the view answered and left its key in Redis
func (r CheckResult) Success() bool {
	return r.Error == "" && r.Cached
}

type Checker struct {
	baseURL string
	client  *http.Client
	redis   *redis.Client
}

func NewChecker(baseURL string, rdb *redis.Client) *Checker {
	return &Checker{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		redis:   rdb,
	}
}

type cachedView struct {
	name string
	path string
	key  string
}

func viewsFor(eventID string) []cachedView {
	return []cachedView{
		{"Floor Plan", "/events/" + eventID + "/floor-plan", constants.BuildFloorPlanLayoutKey(eventID)},
		{"Seats (all)", "/events/" + eventID + "/seats", constants.BuildSeatAvailabilityKey(eventID, "", "")},
		{"Seats (VIP)", "/events/" + eventID + "/seats?tier=VIP", constants.BuildSeatAvailabilityKey(eventID, "", "VIP")},
		{"Capacity", "/events/" + eventID + "/capacity?expected_attendance=20", constants.BuildCapacityReportKey(eventID, 20)},
	}
}

// Run clears each view's key, reads the view twice and checks the key was populated
func (c *Checker) Run(ctx context.Context, eventID string) []CheckResult {
	views := viewsFor(eventID)
	results := make([]CheckResult, 0, len(views))
	for _, v := range views {
		results = append(results, c.check(ctx, v))
	}
	return results
}

func (c *Checker) check(ctx context.Context, v cachedView) CheckResult {
	result := CheckResult{Name: v.name, Path: v.path, CacheKey: v.key}

	if err := c.redis.Del(ctx, v.key).Err(); err != nil {
		result.Error = fmt.Sprintf("clear key: %v", err)
		return result
	}

	status, elapsed, err := c.get(ctx, v.path)
	result.StatusCode, result.FirstRead = status, elapsed
	if err != nil {
		result.Error = err.Error()
		return result
	}
	if status != http.StatusOK {
		result.Error = fmt.Sprintf("HTTP %d", status)
		return result
	}

	n, err := c.redis.Exists(ctx, v.key).Result()
	if err != nil {
		result.Error = fmt.Sprintf("inspect key: %v", err)
		return result
	}
	result.Cached = n == 1

	if _, elapsed, err = c.get(ctx, v.path); err != nil {
		result.Error = err.Error()
		return result
	}
	result.SecondRead = elapsed
	return result
}

func (c *Checker) get(ctx context.Context, path string) (int, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return 0, 0, err
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, time.Since(start), err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, time.Since(start), nil
}

func printReport(w io.Writer, results []CheckResult) (failed int) {
	fmt.Fprintln(w, "\n📊 CACHE CHECK REPORT")
	fmt.Fprintln(w, "=====================")
	for _, r := range results {
		icon := "✅"
		if !r.Success() {
			icon = "❌"
			failed++
		}
		fmt.Fprintf(w, "%s %-12s %v -> %v  %s", icon, r.Name, r.FirstRead, r.SecondRead, r.CacheKey)
		if r.Error != "" {
			fmt.Fprintf(w, "  (%s)", r.Error)
		} else if !r.Cached {
			fmt.Fprint(w, "  (not cached)")
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "\n%d/%d views cached\n", len(results)-failed, len(results))
	return failed
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	baseURL := os.Getenv("CACHECHECK_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:" + cfg.Port + cfg.GetAPIBasePath()
	}
	eventID := os.Getenv("SEED_EVENT_ID")
	if eventID == "" {
		eventID = uuid.NewSHA1(uuid.NameSpaceURL, []byte("seatkeep:demo-event-42")).String()
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("❌ Redis connection failed: %v", err)
	}
	fmt.Println("✅ Redis connection: OK")
	fmt.Printf("🔍 Checking cached views of event %s at %s\n", eventID, baseURL)

	if failed := printReport(os.Stdout, NewChecker(baseURL, rdb).Run(ctx, eventID)); failed > 0 {
		os.Exit(1)
	}
}
