package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"garage-client/api"
	"garage-client/internal/client"
	"garage-client/internal/config"
	"garage-client/internal/http-server/handlers/payment/callback"
	"garage-client/internal/schedule"
	"garage-client/internal/service"
	"garage-client/internal/session"
	"garage-client/pkg/handlers/slogpretty"
	"garage-client/pkg/middleware/mwlogger"
	"garage-client/pkg/sl"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	persist, err := session.NewRedisPersistence(cfg.Session.RedisAddr, cfg.Session.Key)
	if err != nil {
		log.Error("Failed to init session storage", sl.Err(err))
		os.Exit(1)
	}
	defer persist.Close()

	store := session.NewStore(persist)

	ctx := context.Background()
	if err := store.Hydrate(ctx); err != nil {
		log.Error("Failed to hydrate session", sl.Err(err))
		os.Exit(1)
	}

	cli := client.New(cfg.Backend.BaseURL, cfg.Backend.Timeout, store, log)
	svc := service.NewService(cli)

	cmd, args := os.Args[1], os.Args[2:]

	var runErr error
	switch cmd {
	case "register":
		runErr = runRegister(ctx, cli, args)
	case "login":
		runErr = runLogin(ctx, cli, args)
	case "logout":
		runErr = cli.SignOut(ctx)
	case "whoami":
		runErr = runWhoami(store)
	case "cars":
		runErr = runCars(ctx, cli)
	case "car":
		runErr = runCar(ctx, cli, args)
	case "car-add":
		runErr = runCarAdd(ctx, cli, args)
	case "car-update":
		runErr = runCarUpdate(ctx, cli, args)
	case "car-delete":
		runErr = runCarDelete(ctx, cli, args)
	case "services":
		runErr = runServices(ctx, cli)
	case "mechanics":
		runErr = runMechanics(ctx, cli)
	case "avail":
		runErr = runAvail(ctx, svc)
	case "avail-add":
		runErr = runAvailAdd(ctx, svc, args)
	case "avail-update":
		runErr = runAvailUpdate(ctx, svc, args)
	case "avail-delete":
		runErr = runAvailDelete(ctx, svc, args)
	case "avail-recurring":
		runErr = runAvailRecurring(ctx, svc, args)
	case "slots":
		runErr = runSlots(ctx, svc, args)
	case "book":
		runErr = runBook(ctx, svc, args)
	case "appointments":
		runErr = runAppointments(ctx, cli)
	case "mech-appointments":
		runErr = runMechAppointments(ctx, cli)
	case "appt":
		runErr = runAppt(ctx, cli, args)
	case "appt-confirm":
		runErr = runApptConfirm(ctx, cli, args)
	case "appt-cancel":
		runErr = runApptCancel(ctx, cli, args)
	case "repairs":
		runErr = runRepairs(ctx, cli, args)
	case "repair-add":
		runErr = runRepairAdd(ctx, cli, args)
	case "parts":
		runErr = runParts(ctx, cli, args)
	case "pay":
		runErr = runPay(ctx, cfg, log, cli, args)
	default:
		usage()
		os.Exit(2)
	}

	if runErr != nil {
		log.Error("Command failed", slog.String("command", cmd), sl.Err(runErr))
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: garage <command> [flags]

Commands:
  register, login, logout, whoami
  cars, car, car-add, car-update, car-delete
  services, mechanics
  avail, avail-add, avail-update, avail-delete, avail-recurring
  slots, book
  appointments, mech-appointments, appt, appt-confirm, appt-cancel
  repairs, repair-add, parts
  pay`)
}

func runRegister(ctx context.Context, cli *client.Client, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	username := fs.String("username", "", "user name")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	role := fs.String("role", "user", "user or mechanic")
	phone := fs.String("phone", "", "phone number")
	workshop := fs.String("workshop", "", "workshop address (mechanics only)")
	fs.Parse(args)

	req := &api.SignUpRequest{
		Username:    *username,
		Email:       *email,
		Password:    *password,
		Role:        []string{*role},
		PhoneNumber: *phone,
	}
	if *workshop != "" {
		req.WorkshopAddress = workshop
	}

	if err := cli.SignUp(ctx, req); err != nil {
		return err
	}

	fmt.Println("registered, now run: garage login")
	return nil
}

func runLogin(ctx context.Context, cli *client.Client, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	username := fs.String("username", "", "user name")
	password := fs.String("password", "", "password")
	fs.Parse(args)

	sess, err := cli.SignIn(ctx, &api.SignInRequest{Username: *username, Password: *password})
	if err != nil {
		return err
	}

	fmt.Printf("signed in as %s (%s)\n", sess.Username, strings.Join(sess.Roles, ", "))
	return nil
}

func runWhoami(store *session.Store) error {
	sess := store.Current()
	if sess == nil {
		fmt.Println("not signed in")
		return nil
	}
	fmt.Printf("%s <%s> roles=%s\n", sess.Username, sess.Email, strings.Join(sess.Roles, ","))
	return nil
}

func runCars(ctx context.Context, cli *client.Client) error {
	cars, err := cli.MyCars(ctx)
	if err != nil {
		return err
	}
	for _, c := range cars {
		fmt.Printf("%d\t%s %s (%d)\t%s\n", c.ID, c.Brand, c.Model, c.Year, c.RegistrationNumber)
	}
	return nil
}

func runCarAdd(ctx context.Context, cli *client.Client, args []string) error {
	fs := flag.NewFlagSet("car-add", flag.ExitOnError)
	brand := fs.String("brand", "", "car brand")
	model := fs.String("model", "", "car model")
	year := fs.Int("year", 0, "production year")
	vin := fs.String("vin", "", "VIN")
	reg := fs.String("reg", "", "registration number")
	fs.Parse(args)

	car, err := cli.AddCar(ctx, &api.CarRequest{Brand: *brand, Model: *model, Year: *year, Vin: *vin, RegistrationNumber: *reg})
	if err != nil {
		return err
	}
	fmt.Printf("car %d added\n", car.ID)
	return nil
}

func runCar(ctx context.Context, cli *client.Client, args []string) error {
	id, err := idFlag("car", args)
	if err != nil {
		return err
	}
	car, err := cli.CarDetails(ctx, id)
	if err != nil {
		return err
	}
	fmt.Printf("%d\t%s %s (%d)\tVIN %s\t%s\n", car.ID, car.Brand, car.Model, car.Year, car.Vin, car.RegistrationNumber)
	return nil
}

func runCarUpdate(ctx context.Context, cli *client.Client, args []string) error {
	fs := flag.NewFlagSet("car-update", flag.ExitOnError)
	id := fs.Int64("id", 0, "car id")
	brand := fs.String("brand", "", "car brand")
	model := fs.String("model", "", "car model")
	year := fs.Int("year", 0, "production year")
	vin := fs.String("vin", "", "VIN")
	reg := fs.String("reg", "", "registration number")
	fs.Parse(args)

	car, err := cli.UpdateCar(ctx, *id, &api.CarRequest{Brand: *brand, Model: *model, Year: *year, Vin: *vin, RegistrationNumber: *reg})
	if err != nil {
		return err
	}
	fmt.Printf("car %d updated\n", car.ID)
	return nil
}

func runCarDelete(ctx context.Context, cli *client.Client, args []string) error {
	id, err := idFlag("car-delete", args)
	if err != nil {
		return err
	}
	return cli.DeleteCar(ctx, id)
}

func runServices(ctx context.Context, cli *client.Client) error {
	services, err := cli.Services(ctx)
	if err != nil {
		return err
	}
	for _, s := range services {
		fmt.Printf("%d\t%s\t%d min\n", s.ID, s.Name, s.Duration)
	}
	return nil
}

func runMechanics(ctx context.Context, cli *client.Client) error {
	mechanics, err := cli.MechanicsWithAvailability(ctx)
	if err != nil {
		return err
	}
	for _, m := range mechanics {
		fmt.Printf("%d\t%s\t%s\t%d windows\n", m.ID, m.Username, m.WorkshopAddress, len(m.Availabilities))
	}
	return nil
}

func runAvail(ctx context.Context, svc *service.Service) error {
	windows, err := svc.Availability(ctx)
	if err != nil {
		return err
	}
	printWindows(windows)
	return nil
}

func runAvailAdd(ctx context.Context, svc *service.Service, args []string) error {
	fs := flag.NewFlagSet("avail-add", flag.ExitOnError)
	start := fs.String("start", "", "window start (RFC 3339)")
	end := fs.String("end", "", "window end (RFC 3339)")
	fs.Parse(args)

	startTime, endTime, err := parseRange(*start, *end)
	if err != nil {
		return err
	}

	windows, err := svc.AddAvailability(ctx, startTime, endTime)
	if err != nil {
		return err
	}
	printWindows(windows)
	return nil
}

func runAvailUpdate(ctx context.Context, svc *service.Service, args []string) error {
	fs := flag.NewFlagSet("avail-update", flag.ExitOnError)
	id := fs.Int64("id", 0, "availability id")
	start := fs.String("start", "", "window start (RFC 3339)")
	end := fs.String("end", "", "window end (RFC 3339)")
	fs.Parse(args)

	startTime, endTime, err := parseRange(*start, *end)
	if err != nil {
		return err
	}

	windows, err := svc.UpdateAvailability(ctx, *id, startTime, endTime)
	if err != nil {
		return err
	}
	printWindows(windows)
	return nil
}

func runAvailDelete(ctx context.Context, svc *service.Service, args []string) error {
	id, err := idFlag("avail-delete", args)
	if err != nil {
		return err
	}
	windows, err := svc.DeleteAvailability(ctx, id)
	if err != nil {
		return err
	}
	printWindows(windows)
	return nil
}

// avail-recurring -day "Monday=09:00-17:00" -day "Friday=10:00-16:00"
func runAvailRecurring(ctx context.Context, svc *service.Service, args []string) error {
	fs := flag.NewFlagSet("avail-recurring", flag.ExitOnError)
	var days stringList
	fs.Var(&days, "day", "weekday spec, e.g. Monday=09:00-17:00 (repeatable)")
	fs.Parse(args)

	template := schedule.WeeklyTemplate{}
	for _, spec := range days {
		day, window, err := parseDaySpec(spec)
		if err != nil {
			return err
		}
		template[day] = window
	}

	submitted, err := svc.PublishRecurring(ctx, template)
	if err != nil {
		return fmt.Errorf("submitted %d windows before failing: %w", submitted, err)
	}

	fmt.Printf("published %d availability windows\n", submitted)
	return nil
}

func runSlots(ctx context.Context, svc *service.Service, args []string) error {
	fs := flag.NewFlagSet("slots", flag.ExitOnError)
	mechanicID := fs.Int64("mechanic", 0, "mechanic id")
	serviceIDs := fs.String("services", "", "comma-separated service ids")
	fs.Parse(args)

	selected, err := svc.ResolveServices(ctx, splitIDs(*serviceIDs))
	if err != nil {
		return err
	}

	slots, err := svc.BookableSlots(ctx, *mechanicID, selected)
	if err != nil {
		return err
	}

	for _, slot := range slots {
		fmt.Printf("%s - %s\n", slot.Start.Format(time.RFC3339), slot.End.Format("15:04"))
	}
	return nil
}

func runBook(ctx context.Context, svc *service.Service, args []string) error {
	fs := flag.NewFlagSet("book", flag.ExitOnError)
	mechanicID := fs.Int64("mechanic", 0, "mechanic id")
	start := fs.String("start", "", "slot start (RFC 3339)")
	serviceIDs := fs.String("services", "", "comma-separated service ids")
	fs.Parse(args)

	var startTime time.Time
	if *start != "" {
		t, err := time.Parse(time.RFC3339, *start)
		if err != nil {
			return fmt.Errorf("invalid start: %w", err)
		}
		startTime = t
	}

	selected, err := svc.ResolveServices(ctx, splitIDs(*serviceIDs))
	if err != nil {
		return err
	}

	appt, err := svc.Book(ctx, *mechanicID, startTime, selected)
	if err != nil {
		return err
	}

	fmt.Printf("appointment %d booked: %s - %s\n",
		appt.ID,
		appt.StartTime.Format(time.RFC3339),
		appt.EndTime.Format("15:04"),
	)
	return nil
}

func runAppointments(ctx context.Context, cli *client.Client) error {
	appts, err := cli.MyAppointments(ctx)
	if err != nil {
		return err
	}
	printAppointments(appts)
	return nil
}

func runMechAppointments(ctx context.Context, cli *client.Client) error {
	appts, err := cli.MechanicAppointments(ctx)
	if err != nil {
		return err
	}
	printAppointments(appts)
	return nil
}

func runAppt(ctx context.Context, cli *client.Client, args []string) error {
	id, err := idFlag("appt", args)
	if err != nil {
		return err
	}
	appt, err := cli.AppointmentDetails(ctx, id)
	if err != nil {
		return err
	}
	printAppointments([]api.Appointment{*appt})
	return nil
}

func runApptConfirm(ctx context.Context, cli *client.Client, args []string) error {
	id, err := idFlag("appt-confirm", args)
	if err != nil {
		return err
	}
	return cli.ConfirmAppointment(ctx, id)
}

func runApptCancel(ctx context.Context, cli *client.Client, args []string) error {
	id, err := idFlag("appt-cancel", args)
	if err != nil {
		return err
	}
	return cli.CancelAppointment(ctx, id)
}

func runRepairs(ctx context.Context, cli *client.Client, args []string) error {
	fs := flag.NewFlagSet("repairs", flag.ExitOnError)
	carID := fs.Int64("car", 0, "car id")
	fs.Parse(args)

	repairs, err := cli.RepairHistoryByCar(ctx, *carID)
	if err != nil {
		return err
	}
	for _, r := range repairs {
		fmt.Printf("%d\t%s\t%.2f\t%s\n", r.ID, r.Description, r.Cost, r.PaymentStatus)
	}
	return nil
}

// repair-add -appointment 3 -car 7 -desc "brakes" -cost 250 -part "Pads:80:2"
func runRepairAdd(ctx context.Context, cli *client.Client, args []string) error {
	fs := flag.NewFlagSet("repair-add", flag.ExitOnError)
	appointmentID := fs.Int64("appointment", 0, "appointment id")
	carID := fs.Int64("car", 0, "car id")
	desc := fs.String("desc", "", "repair description")
	cost := fs.Float64("cost", 0, "total cost")
	var parts stringList
	fs.Var(&parts, "part", "used part as name:price:quantity (repeatable)")
	fs.Parse(args)

	req := &api.AddRepairRequest{
		AppointmentID: *appointmentID,
		CarID:         *carID,
		Description:   *desc,
		Cost:          *cost,
	}
	for _, spec := range parts {
		part, err := parsePartSpec(spec)
		if err != nil {
			return err
		}
		req.UsedParts = append(req.UsedParts, part)
	}

	repair, err := cli.AddRepair(ctx, req)
	if err != nil {
		return err
	}
	fmt.Printf("repair %d logged\n", repair.ID)
	return nil
}

func runParts(ctx context.Context, cli *client.Client, args []string) error {
	fs := flag.NewFlagSet("parts", flag.ExitOnError)
	repairID := fs.Int64("repair", 0, "repair id")
	fs.Parse(args)

	parts, err := cli.UsedPartsByRepair(ctx, *repairID)
	if err != nil {
		return err
	}
	for _, p := range parts {
		fmt.Printf("%s\tx%d\t%.2f\n", p.Name, p.Quantity, p.Price)
	}
	return nil
}

// runPay opens a payment for a repair, prints the provider link and
// serves the redirect-in on a local listener until the provider calls
// back or the user interrupts.
func runPay(ctx context.Context, cfg *config.Config, log *slog.Logger, cli *client.Client, args []string) error {
	fs := flag.NewFlagSet("pay", flag.ExitOnError)
	repairID := fs.Int64("repair", 0, "repair id")
	fs.Parse(args)

	link, err := cli.CreatePayment(ctx, *repairID)
	if err != nil {
		return err
	}

	fmt.Printf("open this link to pay:\n\n  %s\n\nwaiting for the payment provider on http://%s/payment/return ...\n",
		link, cfg.PaymentCallback.Address)

	done := make(chan error, 1)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(mwlogger.New(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)
	router.Get("/payment/return", callback.New(log, cli, *repairID, done))

	serv := &http.Server{
		Addr:         cfg.PaymentCallback.Address,
		Handler:      router,
		ReadTimeout:  cfg.PaymentCallback.Timeout,
		WriteTimeout: cfg.PaymentCallback.Timeout,
		IdleTimeout:  cfg.PaymentCallback.IdleTimeout,
	}

	serverErrCh := make(chan error, 1)

	go func() {
		log.Info("Starting payment callback listener", slog.String("addr", cfg.PaymentCallback.Address))
		if err := serv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		} else {
			serverErrCh <- nil
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var result error
	select {
	case sig := <-sigCh:
		log.Info("Received shutdown signal", slog.String("signal", sig.String()))
		result = errors.New("interrupted before the payment completed")
	case err := <-serverErrCh:
		if err != nil {
			log.Error("Callback listener stopped unexpectedly", sl.Err(err))
			result = err
		}
	case err := <-done:
		if err != nil {
			result = err
		} else {
			fmt.Println("payment completed")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.PaymentCallback.ShutdownTimeout)
	defer cancel()

	if err := serv.Shutdown(shutdownCtx); err != nil {
		log.Error("Listener shutdown failed", sl.Err(err))
	}

	return result
}

// flag plumbing

type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ",") }

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

func idFlag(name string, args []string) (int64, error) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	id := fs.Int64("id", 0, "id")
	fs.Parse(args)
	if *id == 0 {
		return 0, errors.New("-id is required")
	}
	return *id, nil
}

func parseRange(start, end string) (time.Time, time.Time, error) {
	startTime, err := time.Parse(time.RFC3339, start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start: %w", err)
	}
	endTime, err := time.Parse(time.RFC3339, end)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end: %w", err)
	}
	return startTime, endTime, nil
}

// parseDaySpec turns "Monday=09:00-17:00" into a template entry.
func parseDaySpec(spec string) (time.Weekday, *schedule.DayWindow, error) {
	name, times, ok := strings.Cut(spec, "=")
	if !ok {
		return 0, nil, fmt.Errorf("invalid day spec %q, want Weekday=HH:MM-HH:MM", spec)
	}

	start, end, ok := strings.Cut(times, "-")
	if !ok {
		return 0, nil, fmt.Errorf("invalid day spec %q, want Weekday=HH:MM-HH:MM", spec)
	}

	day, err := parseWeekday(name)
	if err != nil {
		return 0, nil, err
	}

	return day, &schedule.DayWindow{StartTime: start, EndTime: end}, nil
}

func parseWeekday(name string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), name) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", name)
}

func splitIDs(csv string) []int64 {
	var ids []int64
	for _, field := range strings.Split(csv, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		id, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// parsePartSpec turns "Pads:80:2" into a used part.
func parsePartSpec(spec string) (api.UsedPart, error) {
	fields := strings.Split(spec, ":")
	if len(fields) != 3 {
		return api.UsedPart{}, fmt.Errorf("invalid part spec %q, want name:price:quantity", spec)
	}

	price, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return api.UsedPart{}, fmt.Errorf("invalid part price in %q: %w", spec, err)
	}

	quantity, err := strconv.Atoi(fields[2])
	if err != nil {
		return api.UsedPart{}, fmt.Errorf("invalid part quantity in %q: %w", spec, err)
	}

	return api.UsedPart{Name: fields[0], Price: price, Quantity: quantity}, nil
}

func printWindows(windows []api.AvailabilityWindow) {
	for _, w := range windows {
		fmt.Printf("%d\t%s - %s\n", w.ID, w.StartTime.Format(time.RFC3339), w.EndTime.Format(time.RFC3339))
	}
}

func printAppointments(appts []api.Appointment) {
	for _, a := range appts {
		status := "pending"
		if a.Confirmed {
			status = "confirmed"
		}
		fmt.Printf("%d\tmechanic %d\t%s - %s\t%s\n",
			a.ID, a.MechanicID,
			a.StartTime.Format(time.RFC3339), a.EndTime.Format("15:04"),
			status,
		)
	}
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}
