// Command portal is a thin CLI over the booking orchestration layer:
// login/register, browse doctors, book, list, and cancel appointments
// against the hospital service gateway.
package main

import (
	"bufio"
	"context"
	"crypto/tls"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/medhub/patient-portal/internal/appointments"
	"github.com/medhub/patient-portal/internal/auth"
	"github.com/medhub/patient-portal/internal/booking"
	appconfig "github.com/medhub/patient-portal/internal/config"
	"github.com/medhub/patient-portal/internal/directory"
	"github.com/medhub/patient-portal/internal/gateway"
	"github.com/medhub/patient-portal/internal/session"
	"github.com/medhub/patient-portal/pkg/logging"
)

type app struct {
	cfg      *appconfig.Config
	logger   *logging.Logger
	sessions session.Store
	auth     *auth.Client
	doctors  *directory.Fetcher
	booker   *booking.Orchestrator
	manager  *appointments.Manager
}

func newApp(ctx context.Context) *app {
	_ = godotenv.Load()
	cfg := appconfig.Load()
	logger := logging.NewText(cfg.LogLevel)

	sessions := buildSessionStore(ctx, cfg, logger)
	channelCfg := gateway.Config{
		BaseURL:  cfg.GatewayBaseURL,
		Timeout:  cfg.HTTPTimeout,
		Sessions: sessions,
		Logger:   logger,
	}

	scheduling := gateway.NewSchedulingChannel(channelCfg)
	return &app{
		cfg:      cfg,
		logger:   logger,
		sessions: sessions,
		auth:     auth.NewClient(gateway.NewAuthChannel(channelCfg), sessions, logger),
		doctors:  directory.NewFetcher(gateway.NewDirectoryChannel(channelCfg), logger, nil),
		booker: booking.NewOrchestrator(scheduling, sessions,
			booking.NewLocalSimulator(cfg.SimulatorDelay), logger, nil, cfg.RedirectDelay),
		manager: appointments.NewManager(scheduling, logger),
	}
}

// buildSessionStore prefers Redis when configured and reachable, so the
// session survives across CLI invocations; otherwise memory.
func buildSessionStore(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) session.Store {
	if strings.TrimSpace(cfg.RedisAddr) == "" {
		return session.NewMemoryStore()
	}
	opts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPass}
	if cfg.RedisTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available, falling back to in-memory session", "error", err)
		return session.NewMemoryStore()
	}
	return session.NewRedisStore(client, cfg.SessionKey, cfg.SessionTTL)
}

func main() {
	root := &cobra.Command{
		Use:           "portal",
		Short:         "Book and manage hospital appointments",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newLoginCmd(),
		newRegisterCmd(),
		newLogoutCmd(),
		newDoctorsCmd(),
		newBookCmd(),
		newAppointmentsCmd(),
		newCancelCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newLoginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and store a session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := newApp(cmd.Context())
			sess, err := a.auth.Login(cmd.Context(), email, password)
			if err != nil {
				return fmt.Errorf("invalid credentials, check your email and password: %w", err)
			}
			name := sess.PatientName
			if name == "" {
				name = email
			}
			fmt.Printf("Welcome back, %s.\n", name)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newRegisterCmd() *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a patient account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := newApp(cmd.Context())
			if err := a.auth.Register(cmd.Context(), name, email, password); err != nil {
				return err
			}
			fmt.Println("Account created. You can now log in.")
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "full name")
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := newApp(cmd.Context())
			if err := a.auth.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("Logged out.")
			return nil
		},
	}
}

func newDoctorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctors",
		Short: "List available doctors",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := newApp(cmd.Context())
			for _, d := range a.doctors.Fetch(cmd.Context()) {
				fmt.Printf("%3d  %-22s %-15s %s\n", d.ID, d.Name, d.Specialization, d.Availability)
			}
			return nil
		},
	}
}

func newBookCmd() *cobra.Command {
	var doctorID int64
	var date, slot string
	cmd := &cobra.Command{
		Use:   "book",
		Short: "Book an appointment",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := newApp(cmd.Context())
			res := a.booker.Submit(cmd.Context(), booking.Request{
				DoctorID: doctorID,
				Date:     date,
				TimeSlot: slot,
			})
			fmt.Println(res.Message)
			if res.State != booking.StateSuccess {
				os.Exit(1)
			}
			// Post-booking "redirect": show the updated list after the
			// advertised delay.
			time.Sleep(res.RedirectAfter)
			return printAppointments(cmd.Context(), a)
		},
	}
	cmd.Flags().Int64Var(&doctorID, "doctor", 0, "doctor id")
	cmd.Flags().StringVar(&date, "date", "", "appointment date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&slot, "slot", "", "time slot, e.g. 09:00-09:30")
	_ = cmd.MarkFlagRequired("doctor")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("slot")
	return cmd
}

func newAppointmentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "appointments",
		Short: "List your appointments",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := newApp(cmd.Context())
			return printAppointments(cmd.Context(), a)
		},
	}
}

func printAppointments(ctx context.Context, a *app) error {
	appts, err := a.manager.List(ctx)
	if err != nil {
		return fmt.Errorf("could not load appointments: %w", err)
	}
	if len(appts) == 0 {
		fmt.Println("No appointments yet.")
		return nil
	}
	for _, appt := range appts {
		fmt.Printf("%3d  Doctor #%d  %s  %s  [%s]\n", appt.ID, appt.DoctorID, appt.Date, appt.TimeSlot, appt.Status)
	}
	return nil
}

func newCancelCmd() *cobra.Command {
	var id int64
	var yes bool
	cmd := &cobra.Command{
		Use:   "cancel",
		Short: "Cancel an appointment",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := newApp(cmd.Context())
			// Load the mirror so cancellation has something to remove.
			if _, err := a.manager.List(cmd.Context()); err != nil {
				return fmt.Errorf("could not load appointments: %w", err)
			}

			confirm := func(id int64) bool {
				if yes {
					return true
				}
				fmt.Printf("Are you sure you want to cancel appointment %d? [y/N] ", id)
				line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
				answer := strings.ToLower(strings.TrimSpace(line))
				return answer == "y" || answer == "yes"
			}

			if err := a.manager.Cancel(cmd.Context(), id, confirm); err != nil {
				return fmt.Errorf("failed to cancel appointment, please try again: %w", err)
			}
			return printAppointments(cmd.Context(), a)
		},
	}
	cmd.Flags().Int64Var(&id, "id", 0, "appointment id")
	cmd.Flags().BoolVar(&yes, "yes", false, "skip the confirmation prompt")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}
