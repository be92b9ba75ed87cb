// Package shell implements the interactive inventory menu.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/rogerio-castellano/inventory-shell/internal/repo"
)

const defaultTimeout = 5 * time.Second

type Settings struct {
	// Timeout bounds each store round-trip.
	Timeout    time.Duration
	UpdateMode repo.UpdateMode
}

type Shell struct {
	repo     repo.ProductRepository
	in       io.Reader
	lines    chan inputLine
	out      io.Writer
	logger   zerolog.Logger
	validate *validator.Validate
	settings Settings
	handlers map[Command]func(ctx context.Context) error
}

func New(r repo.ProductRepository, in io.Reader, out io.Writer, logger zerolog.Logger, settings Settings) *Shell {
	if settings.Timeout <= 0 {
		settings.Timeout = defaultTimeout
	}
	if settings.UpdateMode == "" {
		settings.UpdateMode = repo.UpdateFirst
	}

	s := &Shell{
		repo:     r,
		in:       in,
		out:      out,
		logger:   logger.With().Str("component", "shell").Logger(),
		validate: validator.New(),
		settings: settings,
	}
	s.handlers = map[Command]func(ctx context.Context) error{
		CmdAdd:            s.addProduct,
		CmdDelete:         s.deleteProduct,
		CmdList:           s.listProducts,
		CmdSearch:         s.searchProducts,
		CmdUpdateQuantity: s.updateQuantity,
		CmdReport:         s.report,
		CmdLowStock:       s.lowStock,
	}
	return s
}

// Run shows the menu until the user exits, input ends or ctx is cancelled.
// Failed commands are reported and the session continues.
func (s *Shell) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)
	s.lines = make(chan inputLine)
	go readLines(s.in, s.lines, done)

	for {
		s.printMenu()

		line, err := s.readLine(ctx, fmt.Sprintf("Enter your choice (%d-%d): ", CmdAdd, CmdExit))
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(err, errLineTooLong) {
			fmt.Fprintln(s.out, "Invalid choice. Please try again.")
			continue
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(s.out)
			s.goodbye()
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		cmd, err := ParseCommand(line)
		if err != nil {
			s.logger.Debug().Err(err).Msg("rejected menu input")
			fmt.Fprintln(s.out, "Invalid choice. Please try again.")
			continue
		}

		if cmd == CmdExit {
			s.goodbye()
			return nil
		}

		err = s.dispatch(ctx, cmd)
		switch {
		case err == nil:
		case ctx.Err() != nil:
			return ctx.Err()
		case errors.Is(err, io.EOF):
			fmt.Fprintln(s.out)
			s.goodbye()
			return nil
		default:
			s.logger.Error().Err(err).Stringer("command", cmd).Msg("command failed")
			fmt.Fprintf(s.out, "Error: %v\n", err)
		}
	}
}

func (s *Shell) dispatch(ctx context.Context, cmd Command) error {
	handler, ok := s.handlers[cmd]
	if !ok {
		return &InvalidChoiceError{Input: cmd.String()}
	}
	s.logger.Debug().Stringer("command", cmd).Msg("dispatching")
	return handler(ctx)
}

// storeContext bounds a single round-trip to the store.
func (s *Shell) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.settings.Timeout)
}

func (s *Shell) printMenu() {
	fmt.Fprintln(s.out, "\nWelcome to the Inventory Management System!")
	for c := CmdAdd; c <= CmdExit; c++ {
		fmt.Fprintf(s.out, "%d. %s\n", c, c)
	}
}

func (s *Shell) goodbye() {
	fmt.Fprintln(s.out, "Exiting the Inventory Management System. Goodbye!")
}
