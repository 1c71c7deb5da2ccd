package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"order-app/internal/model"
	"order-app/internal/service"

	"github.com/rs/zerolog"
)

// App runs the welcome screen and the menu loop of logged-in users.
type App struct {
	console  *Console
	router   *Router
	accounts service.AccountService
	logger   zerolog.Logger
}

// NewApp creates the interactive application. Middleware is installed on
// router: Recovery, then Logging, then RequireAdmin.
func NewApp(console *Console, router *Router, accounts service.AccountService, logger zerolog.Logger) *App {
	logger = logger.With().Str("component", "app").Logger()
	router.Use(Recovery(logger), Logging(logger), RequireAdmin(logger))

	return &App{
		console:  console,
		router:   router,
		accounts: accounts,
		logger:   logger,
	}
}

// Run shows the welcome screen until the user exits or input ends.
func (a *App) Run(ctx context.Context) error {
	err := a.welcome(ctx)
	if errors.Is(err, io.EOF) || errors.Is(err, errExit) {
		return nil
	}
	return err
}

var errExit = errors.New("exit")

func (a *App) welcome(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		a.console.Frame(" ", "\tWelcome to Order APP!", "", "\tA. Register", "\tB. Login")
		choice, err := a.console.Prompt("Enter option or 'end' for exit >>> ")
		if err != nil {
			return err
		}

		switch strings.ToLower(strings.TrimSpace(choice)) {
		case "a":
			err = a.register(ctx)
		case "b":
			var account *model.Account
			account, err = a.login(ctx)
			if err == nil && account != nil {
				err = a.menu(ctx, New(account))
			}
		case "end":
			return errExit
		default:
			a.console.Say("Unavailable option.")
		}
		if err != nil {
			return err
		}
	}
}

func (a *App) register(ctx context.Context) error {
	username, err := a.console.Prompt("Enter username or 'q' for quit >> ")
	if err != nil || strings.EqualFold(username, "q") {
		return err
	}
	if strings.TrimSpace(username) == "" {
		a.console.Say("You have to use some username.")
		return nil
	}

	email, err := a.console.Prompt("Enter email or 'q' to quit >> ")
	if err != nil || strings.EqualFold(email, "q") {
		return err
	}

	password, err := a.console.Prompt("Enter password or 'q' for quit >> ")
	if err != nil || strings.EqualFold(password, "q") {
		return err
	}
	if password == "" {
		a.console.Say("Cannot register without password. ♫")
		return nil
	}

	account, err := a.accounts.Register(ctx, username, email, password)
	if err != nil {
		return a.report(err)
	}
	a.console.Say(fmt.Sprintf("\t%s registered!", account.Username))
	a.console.Say("\tAccount created. You can login now")
	return nil
}

func (a *App) login(ctx context.Context) (*model.Account, error) {
	for {
		email, err := a.console.Prompt("Enter email or 'q' for quit >> ")
		if err != nil || strings.EqualFold(email, "q") {
			return nil, err
		}
		password, err := a.console.Prompt("Enter password or 'q' for quit >> ")
		if err != nil || strings.EqualFold(password, "q") {
			return nil, err
		}

		account, err := a.accounts.Login(ctx, email, password)
		switch {
		case errors.Is(err, model.ErrInvalidCredentials):
			a.console.Say("Not valid credentials. ☻")
		case err != nil:
			return nil, a.report(err)
		default:
			a.console.Say(fmt.Sprintf("Successfully logged in. Welcome %s ♫ ♪ ", account.Username))
			return account, nil
		}
	}
}

// menu runs commands for s until logout or exit.
func (a *App) menu(ctx context.Context, s *Session) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		a.showMenu(s)
		choice, err := a.console.Prompt("Enter option or 'end' for exit >>> ")
		if err != nil {
			return err
		}
		if strings.EqualFold(strings.TrimSpace(choice), "end") {
			return errExit
		}

		err = a.router.Dispatch(ctx, s, choice)
		switch {
		case errors.Is(err, errLogout):
			return nil
		case errors.Is(err, ErrUnknownOption):
			a.console.Say("Unavailable option.")
		case err != nil:
			if err := a.report(err); err != nil {
				return err
			}
		}
	}
}

// report prints domain errors to the user. Other errors are printed as a
// generic failure; io.EOF and context errors are returned.
func (a *App) report(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if de, ok := model.IsDomainError(err); ok {
		a.console.Say(de.Message)
		return nil
	}
	if errors.Is(err, ErrPanic) {
		a.console.Say("Something went wrong. Please try again.")
		return nil
	}

	a.logger.Error().Err(err).Msg("command failed")
	a.console.Say("Something went wrong. Please try again.")
	return nil
}

func (a *App) showMenu(s *Session) {
	a.console.Frame(" ", "\tWelcome to Order APP!")

	var b strings.Builder
	b.WriteString("\n\tCustomer options:\n\n")
	admin := false
	for _, opt := range a.router.Options(s) {
		if opt.Admin && !admin {
			admin = true
			b.WriteString("\n\tAdmin options:\n\n")
		}
		fmt.Fprintf(&b, "\t%s. %s\n", opt.Key, opt.Label)
	}
	a.console.Println(b.String())
}
