package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/vocabtrainer/internal/api"
	"github.com/example/vocabtrainer/internal/bot"
	"github.com/example/vocabtrainer/internal/config"
	"github.com/example/vocabtrainer/internal/database"
	"github.com/example/vocabtrainer/internal/excel"
	"github.com/example/vocabtrainer/internal/middleware"
	"github.com/example/vocabtrainer/internal/scheduler"
	"github.com/example/vocabtrainer/internal/trainer"
	"github.com/example/vocabtrainer/pkg/models"
	"github.com/jmoiron/sqlx"
)

func main() {
	importPath := flag.String("import", "", "import vocabulary from an .xlsx or .csv file and exit")
	sheet := flag.String("sheet", "", "sheet to import (default: first sheet)")
	createUser := flag.String("create-user", "", "create a user with this name, print a session token and exit")
	telegramChat := flag.Int64("telegram-chat", 0, "telegram chat ID for reminders of the created user")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	switch {
	case *importPath != "":
		if err := runImport(ctx, db, *importPath, *sheet); err != nil {
			log.Fatalf("Import failed: %v", err)
		}
	case *createUser != "":
		if err := runCreateUser(ctx, db, cfg, *createUser, *telegramChat); err != nil {
			log.Fatalf("Failed to create user: %v", err)
		}
	default:
		if err := serve(ctx, db, cfg); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}
}

func runImport(ctx context.Context, db *sqlx.DB, path, sheet string) error {
	importConfig := excel.DefaultImportConfig()
	importConfig.FilePath = path
	importConfig.SheetName = sheet

	result, err := excel.NewImporter(database.NewVocabRepository(db)).ImportWords(ctx, importConfig)
	if err != nil {
		return err
	}
	for _, e := range result.Errors {
		log.Printf("[IMPORT] %s", e)
	}
	fmt.Printf("Processed %d rows: %d created, %d updated, %d skipped\n",
		result.TotalProcessed, result.Created, result.Updated, result.Skipped)
	return nil
}

func runCreateUser(ctx context.Context, db *sqlx.DB, cfg *config.Config, name string, chatID int64) error {
	user := models.User{Username: name, CreatedAt: time.Now()}
	if chatID != 0 {
		user.TelegramChatID = &chatID
		user.NotificationsEnabled = true
	}
	if err := database.NewUserRepository(db).Create(ctx, &user); err != nil {
		return err
	}

	token, err := middleware.SignSession([]byte(cfg.SessionSecret), user.ID, cfg.SessionTTL)
	if err != nil {
		return err
	}
	fmt.Printf("User %q created with ID %d\nSession token: %s\n", user.Username, user.ID, token)
	return nil
}

func serve(ctx context.Context, db *sqlx.DB, cfg *config.Config) error {
	catalog, err := trainer.NewCachedCatalog(database.NewVocabRepository(db), cfg.CatalogCacheSize)
	if err != nil {
		return err
	}
	defer catalog.Close()

	memory := database.NewMemoryRepository(db)
	tr := trainer.New(catalog, memory, trainer.Config{
		NewItemsPerDay:  cfg.NewItemsPerDay,
		MaxIntervalDays: cfg.MaxIntervalDays,
	})

	if cfg.SchedulerEnabled {
		var notifier scheduler.Notifier = scheduler.LogNotifier{}
		if cfg.TelegramToken != "" {
			tg, err := bot.NewNotifier(cfg.TelegramToken, database.NewUserRepository(db))
			if err != nil {
				return err
			}
			go tg.Listen(ctx)
			notifier = tg
		}

		s := scheduler.New(memory, notifier, scheduler.Config{
			Interval:  cfg.ReminderInterval,
			StartHour: cfg.NotificationStartHour,
			EndHour:   cfg.NotificationEndHour,
		})
		if err := s.Start(); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
		defer s.Stop()
		log.Println("Reminder scheduler started successfully")
	}

	mux := http.NewServeMux()
	api.NewRouter(tr, []byte(cfg.SessionSecret)).Register(mux)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           middleware.RequestLog(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Println("Server stopped successfully")
	return nil
}
