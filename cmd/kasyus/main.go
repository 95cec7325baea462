package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/kasyus/kasyus-go/gateway"
	"github.com/kasyus/kasyus-go/internal/config"
	"github.com/kasyus/kasyus-go/internal/utils"
	"github.com/kasyus/kasyus-go/session"
	"github.com/kasyus/kasyus-go/sessionstore"
)

const usage = `usage: kasyus <command> [args]

commands:
  login <email> <password>  authenticate and persist the session
  me                        show the current session's profile
  logout                    clear the persisted session
  products [categoryID]     list the catalog
  cart                      show the current cart
`

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("kasyus failed")
	}
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	_ = godotenv.Load()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	if len(os.Args) < 2 {
		fmt.Print(usage)
		return nil
	}

	c := config.New()
	displayAppname(c.AppName)

	store, err := newStore(c)
	if err != nil {
		return err
	}

	return dispatch(context.Background(), c, store, os.Args[1], os.Args[2:])
}

func newStore(c config.Config) (session.Store, error) {
	if c.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: c.RedisAddr, Password: c.RedisPassword})
		return sessionstore.NewRedis(client, "", 0), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, errors.Wrap(err, "[newStore] resolving home dir")
	}
	return sessionstore.NewFile(filepath.Join(home, c.DataDir)), nil
}

func dispatch(ctx context.Context, c config.Config, store session.Store, command string, args []string) error {
	httpClient := &http.Client{Timeout: c.HTTPTimeout}

	// Login and verification run before a session exists, so the manager's
	// collaborators come from a client without a token source.
	authClient := gateway.New(c.GatewayURL,
		gateway.WithHTTPClient(httpClient),
		gateway.WithLogger(log.Logger),
	)

	manager, err := session.NewManager(store, authClient.Auth(), authClient.Users(),
		session.WithLogger(log.Logger),
		session.WithRedirect(func(target string) {
			log.Info().Str("target", target).Msg("session cleared, re-authentication required")
		}),
	)
	if err != nil {
		return err
	}

	// Authenticated gateway calls read the live session token.
	client := gateway.New(c.GatewayURL,
		gateway.WithHTTPClient(httpClient),
		gateway.WithLogger(log.Logger),
		gateway.WithTokenSource(manager.TokenSource()),
	)

	manager.Initialize(ctx)

	switch command {
	case "login":
		if len(args) != 2 {
			return errors.New("usage: kasyus login <email> <password>")
		}
		if err := manager.Login(ctx, args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("logged in as %s\n", utils.Value(manager.User()).Email)
		return nil

	case "me":
		user := manager.User()
		if user == nil {
			return session.ErrNotAuthenticated
		}
		fmt.Printf("%s <%s> (%s)\n", user.FullName(), user.Email, user.Role)
		return nil

	case "logout":
		manager.Logout(ctx)
		fmt.Println("logged out")
		return nil

	case "products":
		var opts gateway.ListOptions
		if len(args) == 1 {
			if _, err := fmt.Sscan(args[0], &opts.CategoryID); err != nil {
				return errors.Wrap(err, "invalid category ID")
			}
		}
		products, err := client.Products().List(ctx, opts)
		if err != nil {
			return err
		}
		for _, p := range products {
			fmt.Printf("%6d  %-40s  %10.2f  %s\n", p.ID, p.Name, p.Price, gateway.ImageURL(c.MediaBaseURL, p.CoverImageURL))
		}
		return nil

	case "cart":
		cart, err := client.Carts().Get(ctx)
		if err != nil {
			return err
		}
		for _, item := range cart.Items {
			fmt.Printf("%6d  %-40s  x%d  %s\n", item.ProductID, item.Name, item.Quantity, item.Price)
		}
		fmt.Printf("total: %s\n", cart.TotalPrice)
		return nil

	default:
		fmt.Print(usage)
		return errors.Errorf("unknown command %q", command)
	}
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
