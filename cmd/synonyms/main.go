package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"synonyms/internal/config"
	"synonyms/internal/gateway"
	"synonyms/internal/logging"
	"synonyms/internal/pipeline"
	"synonyms/internal/similarity"
	"synonyms/internal/sqlite"
)

type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, ",")
}

func (s *stringList) Set(value string) error {
	*s = append(*s, value)
	return nil
}

type commonFlags struct {
	configPath string
	questions  string
	workers    int
	texts      stringList
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "", "path to config file (defaults are used when empty)")
	fs.StringVar(&c.questions, "questions", "", "question file, overrides corpus.questions")
	fs.IntVar(&c.workers, "workers", -1, "files read in parallel, overrides corpus.workers")
	fs.Var(&c.texts, "text", "reference text, repeatable; overrides corpus.texts")
}

// load applies the config file, then flag overrides. Extra positional
// arguments are reference texts.
func (c *commonFlags) load(args []string) *config.Config {
	cfg := config.Default()
	if c.configPath != "" {
		loaded, err := config.Load(c.configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "config error: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	texts := append([]string{}, c.texts...)
	texts = append(texts, args...)
	if len(texts) > 0 {
		cfg.Corpus.Texts = texts
	}
	if c.questions != "" {
		cfg.Corpus.Questions = c.questions
	}
	if c.workers >= 0 {
		cfg.Corpus.Workers = c.workers
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	if cfg.Store.Enabled || cfg.Log.File != "" {
		if err := cfg.EnsureRuntimeDirs(); err != nil {
			fmt.Fprintf(os.Stderr, "runtime dirs error: %v\n", err)
			os.Exit(1)
		}
	}
	if cfg.Log.File != "" {
		if err := logging.SetFile(cfg.Log.File); err != nil {
			fmt.Fprintf(os.Stderr, "log setup error: %v\n", err)
			os.Exit(1)
		}
	} else {
		logging.SetOutput(os.Stderr)
	}
	return cfg
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "run":
		runCmd(os.Args[2:])
	case "similar":
		similarCmd(os.Args[2:])
	case "history":
		historyCmd(os.Args[2:])
	case "serve":
		serveCmd(os.Args[2:])
	case "check":
		checkCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "synonyms <run|similar|history|serve|check> [flags] [text ...]")
}

func openStore(cfg *config.Config, disabled bool) *sqlite.DB {
	if disabled || !cfg.Store.Enabled {
		return nil
	}
	db, err := sqlite.Open(cfg.Store.SQLitePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sqlite error: %v\n", err)
		os.Exit(1)
	}
	return db
}

func requireCorpus(cfg *config.Config) {
	if err := cfg.RequireCorpus(); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(2)
	}
}

func runCmd(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	var common commonFlags
	common.register(fs)
	noStore := fs.Bool("no-store", false, "do not record the run")
	_ = fs.Parse(args)

	cfg := common.load(fs.Args())
	requireCorpus(cfg)
	db := openStore(cfg, *noStore)
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := pipeline.New(cfg.Corpus, db, logging.New("pipeline"), os.Stdout)
	report, err := p.Run(ctx)
	// A report is returned alongside a store error; the score is still valid.
	report.WriteSummary(os.Stdout)
	if err != nil {
		if errors.Is(err, pipeline.ErrQuestionsNotFound) {
			fmt.Fprintf(os.Stderr, "Question file not found: %s\n", cfg.Corpus.Questions)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "run error: %v\n", err)
		os.Exit(1)
	}
}

func similarCmd(args []string) {
	fs := flag.NewFlagSet("similar", flag.ExitOnError)
	var common commonFlags
	common.register(fs)
	word := fs.String("word", "", "target word")
	choices := fs.String("choices", "", "comma separated choices")
	_ = fs.Parse(args)
	if *word == "" || *choices == "" {
		fmt.Fprintln(os.Stderr, "similar requires -word and -choices")
		os.Exit(2)
	}
	candidates := strings.Split(*choices, ",")
	for i := range candidates {
		candidates[i] = strings.TrimSpace(candidates[i])
	}

	cfg := common.load(fs.Args())
	requireCorpus(cfg)
	m, _, err := pipeline.New(cfg.Corpus, nil, logging.New("pipeline"), nil).Build(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "build error: %v\n", err)
		os.Exit(1)
	}
	chosen, err := similarity.MostSimilar(*word, candidates, m)
	if err != nil {
		fmt.Fprintf(os.Stderr, "similar error: %v\n", err)
		os.Exit(2)
	}
	for _, c := range similarity.Rank(*word, candidates, m) {
		if !c.Known {
			fmt.Printf("   n/a %s\n", c.Word)
			continue
		}
		fmt.Printf("%0.4f %s\n", c.Score, c.Word)
	}
	fmt.Println(chosen)
}

func historyCmd(args []string) {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	var common commonFlags
	common.register(fs)
	limit := fs.Int("limit", 20, "runs to show")
	runID := fs.Int64("run", 0, "show the answers of one run")
	deleteID := fs.Int64("delete", 0, "delete one recorded run")
	_ = fs.Parse(args)

	cfg := common.load(nil)
	if !cfg.Store.Enabled {
		fmt.Fprintln(os.Stderr, "history requires store.enabled in config")
		os.Exit(2)
	}
	db := openStore(cfg, false)
	defer db.Close()
	ctx := context.Background()

	if *deleteID != 0 {
		run, err := db.GetRun(ctx, *deleteID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "history error: %v\n", err)
			os.Exit(1)
		}
		if run == nil {
			fmt.Fprintf(os.Stderr, "run %d not found\n", *deleteID)
			os.Exit(1)
		}
		if err := db.DeleteRun(ctx, *deleteID); err != nil {
			fmt.Fprintf(os.Stderr, "history error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("deleted run %d\n", *deleteID)
		return
	}

	if *runID != 0 {
		answers, err := db.ListRunAnswers(ctx, *runID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "history error: %v\n", err)
			os.Exit(1)
		}
		for _, a := range answers {
			mark := "x"
			if a.Correct {
				mark = "ok"
			}
			fmt.Printf("%4d %-2s %s -> %s (expected %s)\n", a.Line, mark, a.Target, a.Chosen, a.Expected)
		}
		return
	}

	runs, err := db.ListRuns(ctx, *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "history error: %v\n", err)
		os.Exit(1)
	}
	for _, run := range runs {
		fmt.Printf("%d %s %s%% %d/%d %s %s\n", run.ID, run.CreatedAt, pipeline.FormatPercentage(run.Percentage),
			run.Correct, run.Correct+run.Incorrect, run.QuestionFile, strings.Join(run.Texts, ","))
	}
}

func serveCmd(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	var common commonFlags
	common.register(fs)
	addr := fs.String("addr", "", "listen address, overrides server.addr")
	_ = fs.Parse(args)

	cfg := common.load(fs.Args())
	requireCorpus(cfg)
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	logger := logging.New("synonyms")
	db := openStore(cfg, false)
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m, _, err := pipeline.New(cfg.Corpus, db, logging.New("pipeline"), nil).Build(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build error: %v\n", err)
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           gateway.NewServer(m, db, logging.New("gateway")).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("gateway starting", map[string]string{
		"addr": cfg.Server.Addr,
	})

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func checkCmd(args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	var common commonFlags
	common.register(fs)
	_ = fs.Parse(args)
	cfg := common.load(fs.Args())
	requireCorpus(cfg)
	fmt.Println("config ok")
}
