// Package main provides the CLI entrypoint for jinqiu.
package main

import (
	"fmt"
	"image/color"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"jinqiu/internal/card"
	"jinqiu/internal/config"
	"jinqiu/internal/corpus"
	"jinqiu/internal/model"
	"jinqiu/internal/quiz"
	"jinqiu/internal/scholar"
	"jinqiu/internal/search"
	"jinqiu/internal/stats"
	"jinqiu/internal/tui"
)

const (
	defaultBaseURL  = "https://raw.githubusercontent.com/snowtraces/poetry-source/master/data"
	defaultFontSize = 32.0
)

var (
	verbose bool
	logger  = zap.NewNop()

	dataBaseURL     string
	dataSearchIndex string

	quizMode      string
	quizQuestions int

	statsWord string

	cardText         string
	cardQuery        string
	cardFont         string
	cardFontSize     float64
	cardWallpaper    string
	cardWallpaperDir string
	cardOut          string
	cardVertical     bool
	cardTheme        int
	cardShadow       bool
	cardAnchorX      float64
	cardAnchorY      float64

	chatAnalyze   string
	chatAppID     string
	chatAPIKey    string
	chatAPISecret string
	chatEndpoint  string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "jinqiu",
		Short:         "Terminal classical-poetry reader",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			l, err := newLogger(verbose)
			if err != nil {
				return fmt.Errorf("failed to build logger: %w", err)
			}
			logger = l
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			_ = logger.Sync()
		},
		RunE: runBrowseCmd,
	}

	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&dataBaseURL, "base-url", defaultBaseURL, "corpus root: http(s) URL or local directory")

	rootCmd.AddCommand(newSearchCmd())
	rootCmd.AddCommand(newQuizCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newCardCmd())
	rootCmd.AddCommand(newChatCmd())
	rootCmd.AddCommand(newCategoriesCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}

func loadFileConfig(cmd *cobra.Command) (config.FileConfig, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return config.FileConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "base-url", &dataBaseURL, fileCfg.Data.BaseURL)
	return fileCfg, nil
}

func newLoader(l *zap.Logger) *corpus.Loader {
	fetcher := corpus.NewCachingFetcher(corpus.NewFetcher(dataBaseURL))
	return corpus.NewLoader(fetcher, l)
}

func runBrowseCmd(cmd *cobra.Command, _ []string) error {
	if _, err := loadFileConfig(cmd); err != nil {
		return err
	}

	// The TUI owns the terminal; the loader must not write over it.
	loader := newLoader(zap.NewNop())
	m := tui.NewBrowseModel(loader, corpus.NewCustomLibrary())
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <查询>",
		Short: "Search the external corpus",
		Args:  cobra.ExactArgs(1),
		RunE:  runSearchCmd,
	}
	cmd.Flags().StringVar(&dataSearchIndex, "search-index", search.DefaultIndexPath, "path of the large-corpus file index")
	return cmd
}

func runSearchCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := loadFileConfig(cmd)
	if err != nil {
		return err
	}
	applyStringConfig(cmd, "search-index", &dataSearchIndex, fileCfg.Data.SearchIndex)

	searcher := &search.Searcher{
		Fetcher:   corpus.NewCachingFetcher(corpus.NewFetcher(dataBaseURL)),
		IndexPath: dataSearchIndex,
		Logger:    logger,
	}
	if conv, err := search.NewSimplifier(); err != nil {
		logger.Warn("simplified variant disabled", zap.Error(err))
	} else {
		searcher.Simplify = conv
	}
	if conv, err := search.NewTraditionalizer(); err != nil {
		logger.Warn("traditional variant disabled", zap.Error(err))
	} else {
		searcher.Traditionalize = conv
	}

	out := cmd.OutOrStdout()
	results, err := searcher.Search(cmd.Context(), args[0], func(batch []model.Poem) {
		for _, p := range batch {
			fmt.Fprintf(out, "《%s》 %s · %s\n", p.Title, p.Author, p.Dynasty)
			for _, line := range p.Content {
				fmt.Fprintf(out, "  %s\n", line)
			}
			fmt.Fprintln(out)
		}
	})
	if err != nil {
		return fmt.Errorf("search aborted: %w", err)
	}
	fmt.Fprintf(out, "共 %d 首\n", len(results))
	return nil
}

func newQuizCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quiz",
		Short: "Play a fill-blank or couplet round",
		Args:  cobra.NoArgs,
		RunE:  runQuizCmd,
	}
	cmd.Flags().StringVar(&quizMode, "mode", "fill", "game mode: fill or couplet")
	cmd.Flags().IntVar(&quizQuestions, "questions", quiz.SessionQuestions, "questions per round")
	return cmd
}

func runQuizCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadFileConfig(cmd)
	if err != nil {
		return err
	}
	applyIntConfig(cmd, "questions", &quizQuestions, fileCfg.Quiz.Questions)
	if quizQuestions <= 0 {
		return fmt.Errorf("--questions must be > 0")
	}

	loader := newLoader(zap.NewNop())
	g := quiz.New()

	var m *tui.QuizModel
	switch quizMode {
	case "fill":
		poems := loader.LoadAll(cmd.Context())
		if len(poems) == 0 {
			return fmt.Errorf("no poems loaded from %s", dataBaseURL)
		}
		s := quiz.NewFillBlankSession(g, poems)
		s.Truncate(quizQuestions)
		m = tui.NewFillBlankModel(s)
	case "couplet":
		text, err := loader.LoadCoupletSource(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to load couplet source: %w", err)
		}
		s := quiz.NewCoupletSession(g, quiz.ParseClauses(text))
		s.Truncate(quizQuestions)
		m = tui.NewCoupletModel(s)
	default:
		return fmt.Errorf("unknown quiz mode %q (fill or couplet)", quizMode)
	}

	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show corpus statistics",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsWord, "word", "", "list poems containing the given text instead of the report")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	if _, err := loadFileConfig(cmd); err != nil {
		return err
	}

	loader := newLoader(logger)
	poems := loader.LoadAll(cmd.Context())
	if len(poems) == 0 {
		return fmt.Errorf("no poems loaded from %s", dataBaseURL)
	}

	out := cmd.OutOrStdout()
	if statsWord != "" {
		matches := stats.PoemsContaining(poems, statsWord)
		for _, p := range matches {
			fmt.Fprintf(out, "《%s》 %s · %s\n", p.Title, p.Author, p.Dynasty)
		}
		fmt.Fprintf(out, "共 %d 首含有 %q\n", len(matches), statsWord)
		return nil
	}

	var seg stats.Segmenter
	if gs, err := stats.NewGseSegmenter(); err != nil {
		logger.Warn("word segmentation disabled", zap.Error(err))
	} else {
		seg = gs
	}
	report := stats.Build(poems, seg)
	if err := stats.WriteReport(out, report, stats.TerminalWidth()); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func newCardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "card",
		Short: "Render a poem card to PNG",
		Args:  cobra.NoArgs,
		RunE:  runCardCmd,
	}
	cmd.Flags().StringVar(&cardText, "text", "", "literal card text (overrides --poem)")
	cmd.Flags().StringVar(&cardQuery, "poem", "", "render the first home-corpus poem matching this text")
	cmd.Flags().StringVar(&cardFont, "font", "", "TTF font path")
	cmd.Flags().Float64Var(&cardFontSize, "font-size", defaultFontSize, "font size")
	cmd.Flags().StringVar(&cardWallpaper, "wallpaper", "", "wallpaper image path")
	cmd.Flags().StringVar(&cardWallpaperDir, "wallpaper-dir", config.DefaultWallpaperDir(), "directory scanned when --wallpaper is unset")
	cmd.Flags().StringVar(&cardOut, "out", "", "output PNG path")
	cmd.Flags().BoolVar(&cardVertical, "vertical", false, "lay text out in right-to-left columns")
	cmd.Flags().IntVar(&cardTheme, "theme", 0, "palette index")
	cmd.Flags().BoolVar(&cardShadow, "shadow", true, "draw a text shadow")
	cmd.Flags().Float64Var(&cardAnchorX, "anchor-x", card.DefaultAnchor.X, "text anchor as a fraction of the width (0-1)")
	cmd.Flags().Float64Var(&cardAnchorY, "anchor-y", card.DefaultAnchor.Y, "text anchor as a fraction of the height (0-1)")
	return cmd
}

func runCardCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadFileConfig(cmd)
	if err != nil {
		return err
	}
	applyStringConfig(cmd, "font", &cardFont, fileCfg.Card.Font)
	applyStringConfig(cmd, "wallpaper-dir", &cardWallpaperDir, fileCfg.Card.WallpaperDir)
	applyFloatConfig(cmd, "font-size", &cardFontSize, fileCfg.Card.FontSize)

	if cardFont == "" {
		return fmt.Errorf("a font is required: pass --font or set [card] font in %s", config.DefaultConfigPath())
	}
	if cardFontSize <= 0 {
		return fmt.Errorf("--font-size must be > 0")
	}
	if cardAnchorX < 0 || cardAnchorX > 1 || cardAnchorY < 0 || cardAnchorY > 1 {
		return fmt.Errorf("--anchor-x and --anchor-y must be between 0 and 1")
	}

	text := cardText
	if text == "" {
		if cardQuery == "" {
			return fmt.Errorf("nothing to render: pass --text or --poem")
		}
		loader := newLoader(logger)
		matches := search.Filter(loader.LoadAll(cmd.Context()), cardQuery)
		if len(matches) == 0 {
			return fmt.Errorf("no poem matches %q", cardQuery)
		}
		p := matches[0]
		text = card.PoemText(p.Title, p.Author, p.Content)
	}

	wallpaperPath := cardWallpaper
	if wallpaperPath == "" {
		files, err := card.ListWallpapers(cardWallpaperDir)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			return fmt.Errorf("no wallpapers in %s", cardWallpaperDir)
		}
		wallpaperPath = files[0]
	}
	wallpaper, err := card.LoadWallpaper(wallpaperPath)
	if err != nil {
		return err
	}

	theme := card.ThemeFor(cardTheme)
	textColor, err := parseHexColor(theme.Text)
	if err != nil {
		return fmt.Errorf("bad theme color: %w", err)
	}

	c := card.Card{
		Wallpaper: wallpaper,
		Text:      text,
		FontPath:  cardFont,
		FontSize:  cardFontSize,
		Color:     textColor,
		Vertical:  cardVertical,
		Anchor:    card.Anchor{X: cardAnchorX, Y: cardAnchorY},
	}
	if cardShadow {
		c.Shadow = &card.Shadow{
			Color:    color.Black,
			Opacity:  0.35,
			Blur:     4,
			Angle:    45,
			Distance: 4,
		}
	}

	out := cardOut
	if out == "" {
		out = filepath.Join(config.DefaultCardOutputDir(),
			fmt.Sprintf("card-%s.png", time.Now().Format("20060102-150405")))
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := c.RenderPNG(out); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func newChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat [消息]",
		Short: "Talk to the AI scholar; no message opens an interactive session",
		Args:  cobra.ArbitraryArgs,
		RunE:  runChatCmd,
	}
	cmd.Flags().StringVar(&chatAnalyze, "analyze", "", "stream an appreciation of the home-corpus poem matching this title")
	cmd.Flags().StringVar(&chatAppID, "app-id", "", "service app id")
	cmd.Flags().StringVar(&chatAPIKey, "api-key", "", "service api key")
	cmd.Flags().StringVar(&chatAPISecret, "api-secret", "", "service api secret")
	cmd.Flags().StringVar(&chatEndpoint, "endpoint", scholar.DefaultEndpoint, "chat websocket endpoint")
	return cmd
}

func runChatCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := loadFileConfig(cmd)
	if err != nil {
		return err
	}
	applyStringConfig(cmd, "app-id", &chatAppID, fileCfg.Chat.AppID)
	applyStringConfig(cmd, "api-key", &chatAPIKey, fileCfg.Chat.APIKey)
	applyStringConfig(cmd, "api-secret", &chatAPISecret, fileCfg.Chat.APISecret)
	applyStringConfig(cmd, "endpoint", &chatEndpoint, fileCfg.Chat.Endpoint)

	if chatAppID == "" || chatAPIKey == "" || chatAPISecret == "" {
		return fmt.Errorf("chat credentials missing: set [chat] app-id, api-key and api-secret via jinqiu config")
	}

	chatCfg := scholar.Config{
		AppID:     chatAppID,
		APIKey:    chatAPIKey,
		APISecret: chatAPISecret,
		Endpoint:  chatEndpoint,
	}

	if chatAnalyze == "" && len(args) == 0 {
		// The TUI owns the terminal; the client must not write over it.
		session := scholar.NewSession(scholar.NewClient(chatCfg, zap.NewNop()))
		program := tea.NewProgram(tui.NewChatModel(session), tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("failed to run TUI: %w", err)
		}
		return nil
	}

	client := scholar.NewClient(chatCfg, logger)

	out := cmd.OutOrStdout()
	onToken := func(tok string) {
		fmt.Fprint(out, tok)
	}

	if chatAnalyze != "" {
		loader := newLoader(logger)
		matches := search.Filter(loader.LoadAll(cmd.Context()), chatAnalyze)
		if len(matches) == 0 {
			return fmt.Errorf("no poem matches %q", chatAnalyze)
		}
		p := matches[0]
		if _, err := client.AnalyzePoem(cmd.Context(), p.Title, p.Author, p.Content, onToken); err != nil {
			return err
		}
		fmt.Fprintln(out)
		return nil
	}

	message := strings.TrimSpace(strings.Join(args, " "))
	if message == "" {
		return fmt.Errorf("nothing to send: pass a message or --analyze")
	}
	if _, err := client.Chat(cmd.Context(), message, onToken); err != nil {
		return err
	}
	fmt.Fprintln(out)
	return nil
}

func newCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the corpus categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			for _, c := range corpus.Catalog {
				fmt.Fprintf(out, "%-14s %s（%s）\n", c.Key, c.Name, c.Dynasty)
			}
			return nil
		},
	}
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

// parseHexColor parses #RGB and #RRGGBB.
func parseHexColor(s string) (color.Color, error) {
	s = strings.TrimPrefix(s, "#")
	var c color.RGBA
	c.A = 0xff
	var err error
	switch len(s) {
	case 6:
		_, err = fmt.Sscanf(s, "%02x%02x%02x", &c.R, &c.G, &c.B)
	case 3:
		_, err = fmt.Sscanf(s, "%1x%1x%1x", &c.R, &c.G, &c.B)
		c.R *= 17
		c.G *= 17
		c.B *= 17
	default:
		return nil, fmt.Errorf("invalid hex color %q", s)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return c, nil
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# jinqiu configuration
# Uncomment a value to enable it. CLI flags override config values.

[data]
# base-url = %q
# search-index = %q     # Large-corpus file index, relative to base-url

[quiz]
# questions = %d        # Questions per round

[card]
# font = "/usr/share/fonts/truetype/your-font.ttf"
# wallpaper-dir = %q
# font-size = %.1f

[chat]
# app-id = ""
# api-key = ""
# api-secret = ""
# endpoint = %q
`,
		defaultBaseURL,
		search.DefaultIndexPath,
		quiz.SessionQuestions,
		config.DefaultWallpaperDir(),
		defaultFontSize,
		scholar.DefaultEndpoint,
	)
}
