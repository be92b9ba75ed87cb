package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// maxLineLength caps a single input line. Longer lines are discarded whole.
const maxLineLength = 4096

var errLineTooLong = errors.New("input line too long")

type inputLine struct {
	text string
	err  error
}

// readLines feeds lines from in to out until input ends or done is closed.
// It runs on its own goroutine so a pending read never blocks cancellation.
func readLines(in io.Reader, out chan<- inputLine, done <-chan struct{}) {
	defer close(out)
	r := bufio.NewReader(in)
	for {
		text, err := nextLine(r)
		if err != nil && !errors.Is(err, errLineTooLong) {
			if !errors.Is(err, io.EOF) {
				select {
				case out <- inputLine{err: err}:
				case <-done:
				}
			}
			return
		}
		select {
		case out <- inputLine{text: text, err: err}:
		case <-done:
			return
		}
	}
}

func nextLine(r *bufio.Reader) (string, error) {
	var (
		line    []byte
		tooLong bool
	)
	for {
		chunk, isPrefix, err := r.ReadLine()
		if err != nil {
			return "", err
		}
		if !tooLong {
			line = append(line, chunk...)
			if len(line) > maxLineLength {
				tooLong, line = true, nil
			}
		}
		if !isPrefix {
			break
		}
	}
	if tooLong {
		return "", errLineTooLong
	}
	return string(line), nil
}

// readLine prints prompt and waits for the next input line or ctx
// cancellation. It returns io.EOF once input is exhausted.
func (s *Shell) readLine(ctx context.Context, prompt string) (string, error) {
	fmt.Fprint(s.out, prompt)
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case l, ok := <-s.lines:
		if !ok {
			return "", io.EOF
		}
		return l.text, l.err
	}
}

// readAnswer is readLine for field prompts: over-long lines are reported
// and asked again.
func (s *Shell) readAnswer(ctx context.Context, prompt string) (string, error) {
	for {
		line, err := s.readLine(ctx, prompt)
		if errors.Is(err, errLineTooLong) {
			fmt.Fprintf(s.out, "Input is too long (at most %d characters).\n", maxLineLength)
			continue
		}
		return line, err
	}
}

// promptText asks until the trimmed answer satisfies the validator tag.
func (s *Shell) promptText(ctx context.Context, prompt, field, tag string) (string, error) {
	for {
		line, err := s.readAnswer(ctx, prompt)
		if err != nil {
			return "", err
		}
		line = strings.TrimSpace(line)
		if err := s.check(line, field, tag); err != nil {
			fmt.Fprintln(s.out, err)
			continue
		}
		return line, nil
	}
}

func (s *Shell) promptInt(ctx context.Context, prompt, field, tag string) (int, error) {
	for {
		line, err := s.readAnswer(ctx, prompt)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil {
			fmt.Fprintf(s.out, "%s must be a whole number, got %q.\n", field, line)
			continue
		}
		if err := s.check(n, field, tag); err != nil {
			fmt.Fprintln(s.out, err)
			continue
		}
		return n, nil
	}
}

func (s *Shell) promptFloat(ctx context.Context, prompt, field, tag string) (float64, error) {
	for {
		line, err := s.readAnswer(ctx, prompt)
		if err != nil {
			return 0, err
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(line), 64)
		if err != nil {
			fmt.Fprintf(s.out, "%s must be a number, got %q.\n", field, line)
			continue
		}
		if math.IsInf(f, 0) || math.IsNaN(f) {
			fmt.Fprintf(s.out, "%s must be a finite number, got %q.\n", field, line)
			continue
		}
		if err := s.check(f, field, tag); err != nil {
			fmt.Fprintln(s.out, err)
			continue
		}
		return f, nil
	}
}

// FieldError describes a rejected input field.
type FieldError struct {
	Field       string
	Description string
}

func (e *FieldError) Error() string {
	return e.Description
}

func (s *Shell) check(value any, field, tag string) error {
	err := s.validate.Var(value, tag)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	fe := verrs[0]
	desc := fmt.Sprintf("%s is invalid.", field)
	switch fe.Tag() {
	case "required":
		desc = fmt.Sprintf("%s is required.", field)
	case "gte":
		desc = fmt.Sprintf("%s cannot be less than %s.", field, fe.Param())
	case "lte":
		desc = fmt.Sprintf("%s cannot be greater than %s.", field, fe.Param())
	}
	return &FieldError{Field: field, Description: desc}
}
