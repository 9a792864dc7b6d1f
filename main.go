package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ctopbusca/ctop-busca/address"
	"github.com/ctopbusca/ctop-busca/config"
	"github.com/ctopbusca/ctop-busca/database"
	"github.com/ctopbusca/ctop-busca/logger"
	"github.com/ctopbusca/ctop-busca/web"
	"github.com/ctopbusca/ctop-busca/web/service"

	"github.com/op/go-logging"
	"github.com/spf13/cobra"
)

var configPath string

func initLogger() {
	switch config.GetLogLevel() {
	case config.Debug:
		logger.InitLogger(logging.DEBUG)
	case config.Info:
		logger.InitLogger(logging.INFO)
	case config.Notice:
		logger.InitLogger(logging.NOTICE)
	case config.Warn:
		logger.InitLogger(logging.WARNING)
	case config.Error:
		logger.InitLogger(logging.ERROR)
	default:
		log.Fatal("unknown log level:", config.GetLogLevel())
	}
}

// openServices loads the configuration and opens the database. The returned
// function closes it.
func openServices() (*config.Config, *service.Services, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := cfg.Storage.EnsureDirectoryExists(); err != nil {
		return nil, nil, nil, err
	}
	if err := database.InitDB(config.GetDBPath()); err != nil {
		return nil, nil, nil, err
	}
	closeDB := func() {
		if err := database.CloseDB(); err != nil {
			logger.Warning("close database:", err)
		}
	}
	return cfg, service.NewServices(cfg, database.GetDB()), closeDB, nil
}

func runWebServer() {
	log.Printf("%v %v", config.GetName(), config.GetVersion())
	initLogger()
	defer logger.CloseLogger()

	cfg, services, closeDB, err := openServices()
	if err != nil {
		log.Fatal(err)
	}
	defer closeDB()

	if _, err := services.Credentials.EnsureInitialized(); err != nil {
		log.Fatal("initialize user store:", err)
	}

	server := web.NewServer(cfg, services)
	if err := server.Start(); err != nil {
		log.Println(err)
		return
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGTERM, os.Interrupt)
	for {
		sig := <-sigCh

		switch sig {
		case syscall.SIGHUP:
			logger.Info("Received SIGHUP signal. Restarting server...")
			if err := server.Stop(); err != nil {
				logger.Warning("stop server err:", err)
			}
			server = web.NewServer(cfg, services)
			if err := server.Start(); err != nil {
				log.Println(err)
				return
			}
		default:
			logger.Info("Shutting down server...")
			if err := server.Stop(); err != nil {
				logger.Warning("stop server err:", err)
			}
			return
		}
	}
}

// withServices runs fn with an open database and reports its error.
func withServices(fn func(cfg *config.Config, s *service.Services) error) {
	cfg, services, closeDB, err := openServices()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer closeDB()
	if err := fn(cfg, services); err != nil {
		fmt.Println(err)
		closeDB()
		os.Exit(1)
	}
}

func initStore() {
	withServices(func(_ *config.Config, s *service.Services) error {
		created, err := s.Credentials.EnsureInitialized()
		if err != nil {
			return err
		}
		if created {
			fmt.Printf("user store created with account %s\n", config.AdminUsername)
			if config.GetAdminPassword() == config.DefaultAdminPassword {
				fmt.Println("the default password is public, change it with: user passwd")
			}
		} else {
			fmt.Println("user store already initialized")
		}
		return nil
	})
}

func addUser(username, password string) {
	withServices(func(_ *config.Config, s *service.Services) error {
		if err := s.Credentials.Create(username, password); err != nil {
			return fmt.Errorf("create user failed: %w", err)
		}
		fmt.Printf("user %s created\n", username)
		return nil
	})
}

func deleteUser(username string) {
	withServices(func(_ *config.Config, s *service.Services) error {
		if err := s.Credentials.Delete(username); err != nil {
			return fmt.Errorf("delete user failed: %w", err)
		}
		fmt.Printf("user %s deleted\n", username)
		return nil
	})
}

func listUsers() {
	withServices(func(_ *config.Config, s *service.Services) error {
		names, err := s.Credentials.List()
		if err != nil {
			if errors.Is(err, service.ErrStoreUnavailable) {
				return fmt.Errorf("%w (run init first)", err)
			}
			return err
		}
		for _, n := range names {
			fmt.Println(n)
		}
		return nil
	})
}

func changePassword(username, password string) {
	withServices(func(_ *config.Config, s *service.Services) error {
		if err := s.Credentials.ChangePassword(username, password); err != nil {
			return fmt.Errorf("change password failed: %w", err)
		}
		fmt.Printf("password of %s changed\n", username)
		return nil
	})
}

func showAccessLog(limit int) {
	withServices(func(_ *config.Config, s *service.Services) error {
		events, err := s.AccessLog.Recent()
		if err != nil {
			return err
		}
		if len(events) == 0 {
			fmt.Println("no access recorded yet")
			return nil
		}
		for i, e := range events {
			if limit > 0 && i >= limit {
				break
			}
			fmt.Printf("%s\t%s\n", e.FormattedTime(), e.Username)
		}
		return nil
	})
}

func geocodeCity(state address.FilterState) {
	initLogger()
	defer logger.CloseLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	withServices(func(_ *config.Config, s *service.Services) error {
		res, err := s.Search.Map(ctx, state)
		if res != nil {
			st := res.Stats
			fmt.Printf("records: %d, on map: %d\n", res.Count, len(res.Map.Points))
			fmt.Printf("lookups: %d, cache hits: %d, fallbacks: %d, resolved: %d, not found: %d, errors: %d\n",
				st.Lookups, st.CacheHits, st.Fallbacks, st.Resolved, st.NotFound, st.Errors)
			if res.Warning != "" {
				fmt.Println("warning:", res.Warning)
			}
		}
		return err
	})
}

func main() {
	var rootCmd = &cobra.Command{
		Use:   config.GetName(),
		Short: "Address search panel for CTO locations",
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path of the TOML configuration file")

	var runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the web server",
		Run: func(cmd *cobra.Command, args []string) {
			runWebServer()
		},
	}

	var initCmd = &cobra.Command{
		Use:   "init",
		Short: "Create the user store with the administrator account",
		Run: func(cmd *cobra.Command, args []string) {
			initStore()
		},
	}

	var userCmd = &cobra.Command{
		Use:   "user",
		Short: "Manage panel users",
	}

	var addCmd = &cobra.Command{
		Use:   "add",
		Short: "Create a user",
		Run: func(cmd *cobra.Command, args []string) {
			username, _ := cmd.Flags().GetString("username")
			password, _ := cmd.Flags().GetString("password")
			addUser(username, password)
		},
	}
	addCmd.Flags().String("username", "", "login username")
	addCmd.Flags().String("password", "", "login password")

	var deleteCmd = &cobra.Command{
		Use:   "delete <username>",
		Short: "Delete a user",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			deleteUser(args[0])
		},
	}

	var listCmd = &cobra.Command{
		Use:   "list",
		Short: "List users",
		Run: func(cmd *cobra.Command, args []string) {
			listUsers()
		},
	}

	var passwdCmd = &cobra.Command{
		Use:   "passwd",
		Short: "Change the password of a user",
		Run: func(cmd *cobra.Command, args []string) {
			username, _ := cmd.Flags().GetString("username")
			password, _ := cmd.Flags().GetString("password")
			changePassword(username, password)
		},
	}
	passwdCmd.Flags().String("username", config.AdminUsername, "login username")
	passwdCmd.Flags().String("password", "", "new password")

	userCmd.AddCommand(addCmd, deleteCmd, listCmd, passwdCmd)

	var logCmd = &cobra.Command{
		Use:   "log",
		Short: "Show the access log, newest first",
		Run: func(cmd *cobra.Command, args []string) {
			limit, _ := cmd.Flags().GetInt("limit")
			showAccessLog(limit)
		},
	}
	logCmd.Flags().Int("limit", 0, "show at most this many entries")

	var geocodeCmd = &cobra.Command{
		Use:   "geocode",
		Short: "Resolve the coordinates of the addresses of a city",
		Run: func(cmd *cobra.Command, args []string) {
			city, _ := cmd.Flags().GetString("city")
			at, _ := cmd.Flags().GetString("at")
			fac, _ := cmd.Flags().GetString("fac")
			geocodeCity(address.FilterState{City: city, AccessPoint: at, Facility: fac})
		},
	}
	geocodeCmd.Flags().String("city", "", "city to geocode")
	geocodeCmd.Flags().String("at", "", "only this access point")
	geocodeCmd.Flags().String("fac", "", "only this facility")
	_ = geocodeCmd.MarkFlagRequired("city")

	rootCmd.AddCommand(runCmd, initCmd, userCmd, logCmd, geocodeCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
