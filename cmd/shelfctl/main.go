// Command shelfctl is a small CLI over a shelf store: insert, query,
// delete, compact and follow a log file from the shell.
//
//	shelfctl -dir ./data -name app.shelf insert '{"name":"a","age":3}'
//	shelfctl -dir ./data -name app.shelf find '{"age":{"$gt":1}}'
//	shelfctl -dir ./data -name app.shelf delete '{"$text":"obsolete"}'
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	json "github.com/goccy/go-json"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"

	"github.com/jpl-au/shelf"
)

// fileConfig is the optional YAML config file. Flags override it.
type fileConfig struct {
	Dir      string   `yaml:"dir"`
	Name     string   `yaml:"name"`
	FullText []string `yaml:"fulltext"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "shelfctl:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "Path to YAML config file")
	dir := flag.String("dir", ".", "Directory holding the store file")
	name := flag.String("name", "data.shelf", "Store filename")
	fulltext := flag.String("fulltext", "", "Comma-separated full-text search fields")
	sortSpec := flag.String("sort", "", "Sort keys, e.g. age:1,name:-1 (last key is primary)")
	project := flag.String("project", "", "Comma-separated fields to keep in results")
	sync := flag.Bool("sync", false, "fsync after writes")
	logLevel := flag.String("log-level", "warn", "Log level (debug, info, warn, error)")
	flag.Parse()

	if flag.NArg() < 1 {
		return fmt.Errorf("usage: shelfctl [flags] insert|find|count|delete|compact|digest|watch [json]")
	}

	level := parseLevel(*logLevel)
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:   level,
		NoColor: !isatty.IsTerminal(os.Stderr.Fd()),
	}))

	cfg := fileConfig{Dir: *dir, Name: *name}
	if *fulltext != "" {
		cfg.FullText = strings.Split(*fulltext, ",")
	}
	if *configPath != "" {
		if err := loadConfig(*configPath, &cfg); err != nil {
			return err
		}
	}

	db, err := shelf.Open(cfg.Dir, cfg.Name, shelf.Config{
		FullText:   cfg.FullText,
		SyncWrites: *sync,
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	command, arg := flag.Arg(0), flag.Arg(1)
	switch command {
	case "insert":
		var doc shelf.Document
		if err := json.Unmarshal([]byte(arg), &doc); err != nil {
			return fmt.Errorf("insert: %w", err)
		}
		return db.Insert(doc)

	case "find":
		p, err := predicate(arg)
		if err != nil {
			return err
		}
		opts, err := findOptions(*sortSpec, *project)
		if err != nil {
			return err
		}
		docs, err := db.Find(p, opts)
		if err != nil {
			return err
		}
		return emit(docs)

	case "count":
		p, err := predicate(arg)
		if err != nil {
			return err
		}
		n, err := db.Count(p)
		if err != nil {
			return err
		}
		fmt.Println(n)
		return nil

	case "delete":
		p, err := predicate(arg)
		if err != nil {
			return err
		}
		n, err := db.Delete(p)
		if err != nil {
			return err
		}
		logger.Info("deleted", "count", n)
		fmt.Println(n)
		return nil

	case "compact":
		stats, err := db.Compact()
		if err != nil {
			return err
		}
		fmt.Printf("kept %d, dropped %d, digest %s\n", stats.Kept, stats.Dropped, stats.Digest)
		return nil

	case "digest":
		sum, err := db.Digest()
		if err != nil {
			return err
		}
		fmt.Println(sum)
		return nil

	case "watch":
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		for doc, err := range db.Watch(ctx) {
			if err != nil {
				return err
			}
			if err := emit([]shelf.Document{doc}); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("unknown command %q", command)
}

func loadConfig(path string, cfg *fileConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// predicate parses the query argument; an empty argument matches all.
func predicate(arg string) (shelf.Predicate, error) {
	if arg == "" {
		return shelf.Where(nil), nil
	}
	return shelf.ParsePredicate([]byte(arg))
}

// findOptions builds FindOptions from the -sort and -project flags.
func findOptions(sortSpec, project string) (*shelf.FindOptions, error) {
	if sortSpec == "" && project == "" {
		return nil, nil
	}
	opts := &shelf.FindOptions{}

	if sortSpec != "" {
		for _, part := range strings.Split(sortSpec, ",") {
			field, dir, ok := strings.Cut(part, ":")
			if !ok {
				return nil, fmt.Errorf("bad sort key %q, want field:1 or field:-1", part)
			}
			d, err := strconv.Atoi(dir)
			if err != nil || (d != shelf.Asc && d != shelf.Desc) {
				return nil, fmt.Errorf("bad sort direction %q", dir)
			}
			opts.Sort = append(opts.Sort, shelf.SortKey{Field: field, Dir: d})
		}
	}

	if project != "" {
		opts.Projection = make(map[string]bool)
		for _, field := range strings.Split(project, ",") {
			opts.Projection[field] = true
		}
	}
	return opts, nil
}

func emit(docs []shelf.Document) error {
	enc := json.NewEncoder(os.Stdout)
	for _, doc := range docs {
		if err := enc.Encode(doc); err != nil {
			return err
		}
	}
	return nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
