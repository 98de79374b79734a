package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/SundayYogurt/bursary_service/config"
	"github.com/SundayYogurt/bursary_service/infra/database"
	"github.com/SundayYogurt/bursary_service/infra/queue"
	"github.com/SundayYogurt/bursary_service/internal/api"
	"github.com/SundayYogurt/bursary_service/internal/dto"
	"github.com/SundayYogurt/bursary_service/internal/helper"
	"github.com/SundayYogurt/bursary_service/internal/notify"
	"github.com/SundayYogurt/bursary_service/internal/repository"
	"github.com/SundayYogurt/bursary_service/internal/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// ---------- Load Config ----------
	cfg := config.LoadConfig()
	cfg.SetupLogger()

	if err := rootCmd(cfg).Execute(); err != nil {
		log.Fatal(err)
	}
}

func rootCmd(cfg config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "bursary",
		Short:         "Church education trust bursary service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		serveCmd(cfg),
		notifierCmd(cfg),
		reportCmd(cfg),
		createSuperAdminCmd(cfg),
		versionCmd(),
	)
	return root
}

func serveCmd(cfg config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return api.StartServer(cfg)
		},
	}
}

// notifierCmd consumes notification events and delivers them as mail.
func notifierCmd(cfg config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "notifier",
		Short: "Consume notification events and send mail",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.KafkaBroker == "" {
				return errors.New("KAFKA_BROKER is required")
			}
			log.Printf("KafkaBroker=%s Topic=%s GroupID=%s", cfg.KafkaBroker, cfg.KafkaTopic, cfg.KafkaGroupID)

			mailService := notify.NewMailService(cfg.GmailUser, cfg.GmailAppPassword, cfg.MailFrom, cfg.MailFromName)
			consumer := queue.NewKafkaConsumer(
				cfg.KafkaBroker,
				cfg.KafkaTopic,
				cfg.KafkaGroupID,
				cfg.KafkaUsername,
				cfg.KafkaPassword,
				notify.NewMailHandler(mailService),
			)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			log.Println("notifier listening for events...")
			return consumer.Listen(ctx)
		},
	}
}

func createSuperAdminCmd(cfg config.Config) *cobra.Command {
	var input dto.RegisterRequest
	cmd := &cobra.Command{
		Use:   "create-superadmin",
		Short: "Create or promote a SuperAdmin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := database.Open(cfg.DatabaseDSN)
			if err != nil {
				return err
			}
			defer database.Close(db)

			ctx := cmd.Context()
			if err := database.Migrate(ctx, db); err != nil {
				return err
			}

			auth := helper.SetupAuth(cfg.AccessSecret, cfg.TokenTTL)
			svc := services.NewAuthService(repository.New(db), auth, notify.LogNotifier{}, "")
			user, err := svc.CreateSuperAdmin(ctx, input)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "SuperAdmin %s ready (id %d)\n", user.Email, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&input.Email, "email", "", "account email")
	cmd.Flags().StringVar(&input.Password, "password", "", "account password (min 8 characters)")
	cmd.Flags().StringVar(&input.DisplayName, "name", "Administrator", "display name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
