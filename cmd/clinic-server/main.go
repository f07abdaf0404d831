package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/clinic/clinic/internal/config"
	"github.com/clinic/clinic/internal/domain/billing"
	"github.com/clinic/clinic/internal/domain/catalog"
	"github.com/clinic/clinic/internal/domain/diagnostics"
	"github.com/clinic/clinic/internal/domain/identity"
	"github.com/clinic/clinic/internal/domain/organization"
	"github.com/clinic/clinic/internal/domain/scheduling"
	"github.com/clinic/clinic/internal/domain/staff"
	"github.com/clinic/clinic/internal/platform/auth"
	"github.com/clinic/clinic/internal/platform/cache"
	"github.com/clinic/clinic/internal/platform/db"
	"github.com/clinic/clinic/internal/platform/middleware"
)

// The domain packages declare small consumer-side directory interfaces
// instead of importing each other. The adapters below close the loop,
// translating between the vocabularies of the producing and consuming
// packages so neither leaks into the other.

// userDirectory exposes identity accounts to the staff, organization,
// catalog, billing and diagnostics packages.
type userDirectory struct {
	users *identity.Service
}

func (d *userDirectory) ClinicOf(ctx context.Context, userID uuid.UUID) (*uuid.UUID, error) {
	return d.users.ClinicOf(ctx, userID)
}

func (d *userDirectory) Provision(ctx context.Context, p staff.UserPayload, role string, clinicID *uuid.UUID) (uuid.UUID, error) {
	u, err := d.users.Provision(ctx, identity.UserRequest{
		Username:    p.Username,
		Password:    p.Password,
		FullName:    p.FullName,
		Gender:      p.Gender,
		Address:     p.Address,
		PhoneNumber: p.PhoneNumber,
		BirthDate:   p.BirthDate,
	}, role, clinicID)
	if errors.Is(err, identity.ErrUserExists) {
		return uuid.Nil, staff.ErrUserTaken
	}
	if err != nil {
		return uuid.Nil, err
	}
	return u.ID, nil
}

func (d *userDirectory) Remove(ctx context.Context, userID uuid.UUID) error {
	return d.users.RemoveUser(ctx, userID)
}

func (d *userDirectory) PatientExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return d.users.PatientExists(ctx, id)
}

// staffDirectory exposes employee records to scheduling, billing and
// diagnostics.
type staffDirectory struct {
	staff *staff.Service
}

func (d *staffDirectory) DoctorByUserID(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	return d.staff.DoctorByUserID(ctx, userID)
}

func (d *staffDirectory) DoctorExists(ctx context.Context, doctorID uuid.UUID) (bool, error) {
	return d.staff.DoctorExists(ctx, doctorID)
}

func (d *staffDirectory) DoctorRate(ctx context.Context, doctorID uuid.UUID) (float64, error) {
	return d.staff.DoctorRate(ctx, doctorID)
}

func (d *staffDirectory) EmployeeOf(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	emp, err := d.staff.EmployeeOf(ctx, userID)
	if err != nil {
		return uuid.Nil, err
	}
	return emp.ID, nil
}

// departmentDirectory exposes departments to the catalog.
type departmentDirectory struct {
	org *organization.Service
}

func (d *departmentDirectory) DepartmentExists(ctx context.Context, id, clinicID uuid.UUID) (bool, error) {
	_, err := d.org.DepartmentInClinic(ctx, id, clinicID)
	if errors.Is(err, organization.ErrDepartmentNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// serviceDirectory exposes the catalog to staff, billing and diagnostics.
type serviceDirectory struct {
	catalog *catalog.Service
}

func (d *serviceDirectory) ServiceExists(ctx context.Context, serviceID, clinicID uuid.UUID) (bool, error) {
	_, err := d.catalog.ServiceInClinic(ctx, serviceID, clinicID)
	if errors.Is(err, catalog.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (d *serviceDirectory) ServiceInClinic(ctx context.Context, serviceID, clinicID uuid.UUID) (bool, error) {
	return d.ServiceExists(ctx, serviceID, clinicID)
}

func (d *serviceDirectory) ServicePrice(ctx context.Context, serviceID, clinicID uuid.UUID) (float64, error) {
	svc, err := d.catalog.ServiceInClinic(ctx, serviceID, clinicID)
	if errors.Is(err, catalog.ErrNotFound) {
		return 0, billing.ErrServiceNotFound
	}
	if err != nil {
		return 0, err
	}
	return svc.Price, nil
}

// appointmentDirectory lets billing settle pending appointments.
type appointmentDirectory struct {
	scheduling *scheduling.Service
}

func (d *appointmentDirectory) Complete(ctx context.Context, appointmentID uuid.UUID) (*billing.CompletedVisit, error) {
	appt, err := d.scheduling.CompleteAppointment(ctx, appointmentID)
	switch {
	case errors.Is(err, scheduling.ErrNotFound):
		return nil, billing.ErrAppointmentNotFound
	case errors.Is(err, scheduling.ErrNotPending):
		return nil, billing.ErrAlreadyPaid
	case err != nil:
		return nil, err
	}
	return &billing.CompletedVisit{PatientID: appt.PatientID, DoctorID: appt.DoctorID}, nil
}

// transactionDirectory lets diagnostics resolve the paid visit a result
// is filed against.
type transactionDirectory struct {
	billing *billing.Service
}

func (d *transactionDirectory) Visit(ctx context.Context, transactionID uuid.UUID) (*diagnostics.PaidVisit, error) {
	t, err := d.billing.Lookup(ctx, transactionID)
	if errors.Is(err, billing.ErrNotFound) {
		return nil, diagnostics.ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &diagnostics.PaidVisit{
		PatientID: t.PatientID,
		DoctorID:  t.DoctorID,
		ServiceID: t.ServiceID,
	}, nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinic-server",
		Short: "Clinic management API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			count, err := db.NewMigrator(pool, dir).Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s).\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, dir).Status(ctx)
			if err != nil {
				return err
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations (not supported)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return fmt.Errorf("migrations are forward-only; restore from a backup or write a new migration that reverses the change")
		},
	}
	cmd.AddCommand(downCmd)

	return cmd
}

// seedCmd provisions the operator account. The operator belongs to no
// clinic and is the only role allowed to create clinics.
func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the operator (DEV) account",
		RunE: func(cmd *cobra.Command, args []string) error {
			username, _ := cmd.Flags().GetString("username")
			password, _ := cmd.Flags().GetString("password")
			if username == "" || password == "" {
				return fmt.Errorf("--username and --password are required")
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			issuer := auth.NewIssuer([]byte(cfg.JWTSecret), cfg.JWTAccessTTL, cfg.JWTRefreshTTL)
			users := identity.NewService(identity.NewUserRepoPG(pool), issuer)

			gender := true
			u, err := users.Provision(ctx, identity.UserRequest{
				Username:    username,
				Password:    password,
				FullName:    "System Operator",
				Gender:      &gender,
				Address:     "-",
				PhoneNumber: "+998000000000",
				BirthDate:   "1990-01-01",
			}, auth.RoleDev, nil)
			if err != nil {
				return err
			}

			fmt.Printf("Operator account %s created (%s).\n", u.Username, u.ID)
			return nil
		},
	}
	cmd.Flags().String("username", "", "Operator username")
	cmd.Flags().String("password", "", "Operator password")
	return cmd
}

func runServer() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	freeTimeCache := cache.New(ctx, cfg.RedisAddr, logger)
	issuer := auth.NewIssuer([]byte(cfg.JWTSecret), cfg.JWTAccessTTL, cfg.JWTRefreshTTL)
	txRunner := func(ctx context.Context, fn func(ctx context.Context) error) error {
		return db.WithTx(ctx, pool, fn)
	}

	// Services, leaves first. The directory adapters declared above carry
	// the cross-domain lookups.
	identitySvc := identity.NewService(identity.NewUserRepoPG(pool), issuer)
	users := &userDirectory{users: identitySvc}

	orgSvc := organization.NewService(
		organization.NewClinicRepoPG(pool),
		organization.NewDepartmentRepoPG(pool),
		users,
	)
	catalogSvc := catalog.NewService(
		catalog.NewServiceRepoPG(pool),
		users,
		&departmentDirectory{org: orgSvc},
	)
	services := &serviceDirectory{catalog: catalogSvc}

	staffSvc := staff.NewService(staff.NewEmployeeRepoPG(pool), users, services, txRunner)
	doctors := &staffDirectory{staff: staffSvc}

	schedulingSvc := scheduling.NewService(
		scheduling.NewScheduleRepoPG(pool),
		scheduling.NewAppointmentRepoPG(pool),
		doctors,
		txRunner,
		freeTimeCache,
	)

	var gateway billing.PaymentGateway
	if g := billing.NewStripeGateway(cfg.StripeAPIKey, "uzs", logger); g != nil {
		gateway = g
	} else {
		logger.Warn().Msg("stripe not configured, card payments are recorded without a charge")
	}
	billingSvc := billing.NewService(
		billing.NewTransactionRepoPG(pool),
		&appointmentDirectory{scheduling: schedulingSvc},
		doctors,
		services,
		users,
		users,
		gateway,
		txRunner,
	)

	diagnosticsSvc := diagnostics.NewService(
		diagnostics.NewResultRepoPG(pool),
		&transactionDirectory{billing: billingSvc},
		doctors,
		services,
		users,
	)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))
	e.Use(middleware.Audit(logger))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok", "version": "0.1.0"})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}

	// Login, refresh and patient self-registration stay outside the JWT
	// gate; everything else requires an access token.
	public := e.Group("/api/v1")
	public.Use(middleware.RateLimit(rateLimitCfg))

	api := e.Group("/api/v1")
	api.Use(middleware.RateLimit(rateLimitCfg))
	api.Use(auth.JWTMiddleware(auth.JWTConfig{Secret: []byte(cfg.JWTSecret)}))

	identityHandler := identity.NewHandler(identitySvc)
	identityHandler.RegisterPublicRoutes(public)
	identityHandler.RegisterRoutes(api)
	organization.NewHandler(orgSvc).RegisterRoutes(api)
	catalog.NewHandler(catalogSvc).RegisterRoutes(api)
	staff.NewHandler(staffSvc).RegisterRoutes(api)
	scheduling.NewHandler(schedulingSvc).RegisterRoutes(api)
	billing.NewHandler(billingSvc).RegisterRoutes(api)
	diagnostics.NewHandler(diagnosticsSvc).RegisterRoutes(api)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server stopped")
		}
	}()
	logger.Info().Str("port", cfg.Port).Msg("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
