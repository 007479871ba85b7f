package api

import "log/slog"

// RequestInfo — побочный канал запроса: что было передано в аргументах
// и метрики метода. В тело ответа не попадает, пишется в лог транспортом.
type RequestInfo struct {
	RequestID string
	Has       []string
	Score     *float64
	NClients  *int
}

// LogValue реализует slog.LogValuer.
func (i *RequestInfo) LogValue() slog.Value {
	attrs := []slog.Attr{slog.String("request_id", i.RequestID)}
	if i.Has != nil {
		attrs = append(attrs, slog.Any("has", i.Has))
	}
	if i.Score != nil {
		attrs = append(attrs, slog.Float64("score", *i.Score))
	}
	if i.NClients != nil {
		attrs = append(attrs, slog.Int("nclients", *i.NClients))
	}
	return slog.GroupValue(attrs...)
}
