package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"podcast-tui/internal/api"
	"podcast-tui/internal/audio"
	"podcast-tui/internal/config"
	"podcast-tui/internal/playback"
	"podcast-tui/internal/prefs"
	"podcast-tui/internal/session"
	"podcast-tui/internal/storage"
	"podcast-tui/internal/ui/app"
)

// env bundles everything the commands and the TUI share
type env struct {
	cfg      *config.Config
	log      zerolog.Logger
	store    storage.Store
	tokens   *api.TokenStore
	client   *api.Client
	session  *session.Manager
	prefs    *prefs.Prefs
	resolver *audio.EpisodeResolver
}

func main() {
	var (
		loginFlag         = flag.String("login", "", "Log in as `username` (password is prompted)")
		registerFlag      = flag.Bool("register", false, "Create an account interactively")
		logoutFlag        = flag.Bool("logout", false, "Log out and forget stored credentials")
		whoamiFlag        = flag.Bool("whoami", false, "Show the signed in user")
		searchFlag        = flag.String("search", "", "Search podcasts and episodes")
		trendingFlag      = flag.Bool("trending", false, "List trending podcasts")
		podcastFlag       = flag.Int64("podcast", 0, "Show a podcast and its episodes by `id`")
		episodeFlag       = flag.Int64("episode", 0, "Show an episode by `id`")
		playFlag          = flag.Int64("play", 0, "Play an episode by `id`")
		openFlag          = flag.Int64("open", 0, "Open an episode's audio in the browser by `id`")
		categoriesFlag    = flag.Bool("categories", false, "List podcast categories")
		categoryFlag      = flag.Int64("category", 0, "List the podcasts of a category by `id`")
		myPodcastsFlag    = flag.Bool("my-podcasts", false, "List the podcasts you created")
		playlistsFlag     = flag.Bool("playlists", false, "List your playlists")
		playlistFlag      = flag.Int64("playlist", 0, "Show a playlist and its episodes by `id`")
		createFlag        = flag.String("playlist-create", "", "Create a playlist called `name`")
		renameFlag        = flag.Int64("playlist-rename", 0, "Rename playlist `id` to the value of -name")
		deleteFlag        = flag.Int64("playlist-delete", 0, "Delete a playlist by `id`")
		addFlag           = flag.Int64("playlist-add", 0, "Add the -episode to playlist `id`")
		removeFlag        = flag.Int64("playlist-remove", 0, "Remove the -episode from playlist `id`")
		nameFlag          = flag.String("name", "", "New playlist name for -playlist-rename")
		subscriptionsFlag = flag.Bool("subscriptions", false, "List your subscriptions")
		statsFlag         = flag.Bool("stats", false, "Show your stats")
		profileFlag       = flag.Bool("profile", false, "Refresh and show your profile")
		updateProfileFlag = flag.Bool("update-profile", false, "Edit your profile interactively")
		themeFlag         = flag.String("theme", "", "Set the theme: light, dark or system")
		ephemeralFlag     = flag.Bool("ephemeral", false, "Keep credentials in memory only")
		helpFlag          = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *helpFlag {
		showHelp()
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	e, closeEnv, err := setup(cfg, *ephemeralFlag)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer closeEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch {
	case *loginFlag != "":
		err = e.login(ctx, *loginFlag)
	case *registerFlag:
		err = e.register(ctx)
	case *logoutFlag:
		e.logout(ctx)
	case *whoamiFlag:
		err = e.whoami()
	case *profileFlag:
		err = e.profile(ctx)
	case *updateProfileFlag:
		err = e.updateProfile(ctx, os.Stdin)
	// -episode doubles as the argument of these two
	case *addFlag != 0:
		err = e.addToPlaylist(ctx, *addFlag, *episodeFlag)
	case *removeFlag != 0:
		err = e.removeFromPlaylist(ctx, *removeFlag, *episodeFlag)
	case *searchFlag != "":
		err = e.search(ctx, *searchFlag)
	case *trendingFlag:
		err = e.trending(ctx)
	case *podcastFlag != 0:
		err = e.showPodcast(ctx, *podcastFlag)
	case *episodeFlag != 0:
		err = e.showEpisode(ctx, *episodeFlag)
	case *playFlag != 0:
		err = e.play(ctx, *playFlag)
	case *openFlag != 0:
		err = e.open(ctx, *openFlag)
	case *categoriesFlag:
		err = e.categories(ctx)
	case *categoryFlag != 0:
		err = e.showCategory(ctx, *categoryFlag)
	case *myPodcastsFlag:
		err = e.myPodcasts(ctx)
	case *playlistsFlag:
		err = e.playlists(ctx)
	case *playlistFlag != 0:
		err = e.showPlaylist(ctx, *playlistFlag)
	case *createFlag != "":
		err = e.createPlaylist(ctx, *createFlag)
	case *renameFlag != 0:
		err = e.renamePlaylist(ctx, *renameFlag, *nameFlag)
	case *deleteFlag != 0:
		err = e.deletePlaylist(ctx, *deleteFlag)
	case *subscriptionsFlag:
		err = e.subscriptions(ctx)
	case *statsFlag:
		err = e.stats(ctx)
	case *themeFlag != "":
		err = e.setTheme(*themeFlag)
	default:
		err = e.runTUI()
	}

	if err != nil {
		stop()
		closeEnv()
		log.Fatalf("%s", api.UserMessage(err, err.Error()))
	}
}

// setup wires storage, the API client and the session together
func setup(cfg *config.Config, ephemeral bool) (*env, func(), error) {
	logger, logCloser, err := cfg.NewLogger()
	if err != nil {
		return nil, nil, err
	}

	var store storage.Store
	if ephemeral {
		store = storage.NewMemoryStore()
	} else {
		ks, err := cfg.OpenStore()
		if err != nil {
			logCloser.Close()
			return nil, nil, err
		}
		store = ks
	}

	tokens := api.NewTokenStore(store, logger)
	client := api.NewClient(cfg.APIURL, tokens,
		api.WithTimeout(cfg.HTTPTimeout),
		api.WithLogger(logger),
	)

	mgr := session.NewManager(client.Auth, tokens, store, logger)
	client.OnSessionExpired(mgr.Expire)
	mgr.InitializeAuth()

	resolver, err := audio.NewEpisodeResolver(client.Episodes, cfg.APIURL)
	if err != nil {
		logCloser.Close()
		return nil, nil, err
	}

	logger.Info().Str("api", cfg.APIURL).Bool("ephemeral", ephemeral).Msg("starting")

	e := &env{
		cfg:      cfg,
		log:      logger,
		store:    store,
		tokens:   tokens,
		client:   client,
		session:  mgr,
		prefs:    prefs.New(store),
		resolver: resolver,
	}

	var closed bool
	return e, func() {
		if closed {
			return
		}
		closed = true
		logCloser.Close()
	}, nil
}

// runTUI starts the interactive application
func (e *env) runTUI() error {
	audioPlayer := audio.NewBeepPlayer(e.log)
	defer audioPlayer.Close()

	application := app.NewApp(app.Deps{
		Session:  e.session,
		Backend:  app.NewBackend(e.client, e.log),
		Playback: playback.NewStore(),
		Player:   audioPlayer,
		Resolver: e.resolver,
		Opener:   audio.NewBrowserOpener(),
		Prefs:    e.prefs,
		Logger:   e.log,
	})
	defer application.Close()

	program := tea.NewProgram(application, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to start TUI: %w", err)
	}
	return nil
}

func showHelp() {
	fmt.Printf(`Podcast TUI - Terminal client for the podcast platform

Usage:
  %[1]s [flags]

Flags:
  -login "user"      Log in (the password is prompted)
  -register          Create an account interactively
  -logout            Log out and forget stored credentials
  -whoami            Show the signed in user
  -profile           Refresh and show your profile
  -update-profile    Edit your name and email
  -search "query"    Search podcasts and episodes
  -trending          List trending podcasts
  -podcast id        Show a podcast and its episodes
  -episode id        Show an episode
  -play id           Play an episode in a minimal player
  -open id           Open an episode's audio in the browser
  -categories        List podcast categories
  -category id       List the podcasts of a category
  -my-podcasts       List the podcasts you created
  -playlists         List your playlists
  -playlist id       Show a playlist and its episodes
  -playlist-create "name"
                     Create a playlist
  -playlist-rename id -name "name"
                     Rename a playlist
  -playlist-delete id
                     Delete a playlist
  -playlist-add id -episode id
                     Add an episode to a playlist
  -playlist-remove id -episode id
                     Remove an episode from a playlist
  -subscriptions     List your subscriptions
  -stats             Show your stats
  -theme name        Set the theme: light, dark or system
  -ephemeral         Keep credentials in memory only
  -help              Show this help message

Environment:
  %[2]s            Base URL of the podcast API (required)
  %[3]s       Request timeout, e.g. 30s
  %[4]s          debug, info, warn or error
  %[5]s           Log file path
  %[6]s    Set to "file" to force the encrypted file keyring
  %[7]s   Password for the file keyring

Examples:
  %[1]s -login alice
  %[1]s -search "golang"
  %[1]s -play 42
  %[1]s -playlist-create "Commute"
  %[1]s -playlist-add 3 -episode 42
  %[1]s                 # Start interactive TUI
`, os.Args[0],
		config.EnvAPIURL, config.EnvHTTPTimeout, config.EnvLogLevel, config.EnvLogFile,
		config.EnvKeyringBackend, config.EnvKeyringPassword,
	)
}
