package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
)

const (
	FieldComponent = "component"
	FieldOwner     = "owner"
	FieldSafe      = "safe"
	FieldTxHash    = "txHash"
)

// SetupGlobalLogger sets the global level and replaces the global logger.
func SetupGlobalLogger(level string) error {
	if err := TrySetupGlobalLevel(level); err != nil {
		return err
	}
	log.Logger = NewLogger("global")
	return nil
}

func TrySetupGlobalLevel(level string) error {
	l, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("parse log level %q: %w", level, err)
	}
	zerolog.SetGlobalLevel(l)
	return nil
}

func makeBold(str any, disabled bool) string {
	const colorBold = 1

	if disabled {
		return fmt.Sprint(str)
	}
	return fmt.Sprintf("\x1b[%dm%v\x1b[0m", colorBold, str)
}

func NewLogger(component string) zerolog.Logger {
	noColor := os.Getenv("NO_COLOR") != "" || !term.IsTerminal(int(os.Stderr.Fd()))
	return newLogger(os.Stderr, component, noColor)
}

func newLogger(out io.Writer, component string, noColor bool) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.DateTime,
		PartsOrder: []string{
			zerolog.TimestampFieldName,
			zerolog.LevelFieldName,
			FieldComponent,
			zerolog.CallerFieldName,
			zerolog.MessageFieldName,
		},
		FieldsExclude: []string{FieldComponent},
		FormatPrepare: func(evt map[string]any) error {
			if c, ok := evt[FieldComponent]; ok {
				evt[FieldComponent] = makeBold(fmt.Sprintf("[%s]", c), noColor)
			}
			return nil
		},
		NoColor: noColor,
	}).
		With().
		Str(FieldComponent, component).
		Caller().
		Timestamp().
		Logger()
}
