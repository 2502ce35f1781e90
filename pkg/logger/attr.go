package logger

import (
	"log/slog"
	"strconv"
	"time"
)

// Group creates a slog group attribute from the provided attributes.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Error records err under "error". A nil err yields an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String("error", err.Error())
}

// Errors groups the non-nil errors under "errors".
func Errors(errs ...error) slog.Attr {
	as := make([]slog.Attr, 0, len(errs))
	for i, err := range errs {
		if err != nil {
			as = append(as, slog.String(strconv.Itoa(i), err.Error()))
		}
	}
	if len(as) == 0 {
		return slog.Attr{}
	}
	return slog.Attr{Key: "errors", Value: slog.GroupValue(as...)}
}

func DocumentID(id string) slog.Attr {
	return slog.String("document_id", id)
}

func BackendType(t string) slog.Attr {
	return slog.String("backend_type", t)
}

func Channel(name string) slog.Attr {
	return slog.String("channel", name)
}

func Collection(name string) slog.Attr {
	return slog.String("collection", name)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

func Mode(mode string) slog.Attr {
	return slog.String("mode", mode)
}

func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}
