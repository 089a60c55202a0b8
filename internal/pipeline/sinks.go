package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yanun0323/logs"

	"bondtrading/internal/bus"
	"bondtrading/internal/connector"
	"bondtrading/internal/historical"
	"bondtrading/internal/ops"
	"bondtrading/internal/schema"
	"bondtrading/pkg/conn"
	"bondtrading/pkg/exception"
)

// Sinks are the egress connectors of the six output streams.
type Sinks struct {
	Executions bus.Connector[schema.ExecutionOrder]
	Positions  bus.Connector[schema.Position]
	Risk       bus.Connector[schema.PV01]
	Streaming  bus.Connector[schema.PriceStream]
	Inquiries  bus.Connector[schema.Inquiry]
	GUI        bus.Connector[schema.Price]

	closers []func() error
}

// Close flushes and closes every underlying output, returning the first
// failure.
func (s *Sinks) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}

func (s *Sinks) validate() error {
	if s.Executions == nil || s.Positions == nil || s.Risk == nil || s.Streaming == nil || s.Inquiries == nil || s.GUI == nil {
		return fmt.Errorf("%w: every output stream needs a sink", exception.ErrNilInstance)
	}
	return nil
}

// OpenSinks opens the outputs selected by the io configuration. now stamps
// file records; nil means the wall clock.
func OpenSinks(ctx context.Context, cfg ops.IO, now func() time.Time) (*Sinks, error) {
	sinks := &Sinks{}
	if cfg.Sink == ops.SinkFile || cfg.Sink == ops.SinkBoth {
		if err := openFileSinks(sinks, cfg, now); err != nil {
			_ = sinks.Close()
			return nil, err
		}
	}
	if cfg.Sink == ops.SinkPostgres || cfg.Sink == ops.SinkBoth {
		if err := openGormSinks(ctx, sinks, cfg.Postgres); err != nil {
			_ = sinks.Close()
			return nil, err
		}
	}
	if err := sinks.validate(); err != nil {
		_ = sinks.Close()
		return nil, err
	}
	return sinks, nil
}

func openFileSinks(s *Sinks, cfg ops.IO, now func() time.Time) error {
	var err error
	if s.Executions, err = openFile(s, cfg, cfg.Outputs.Executions, now, connector.EncodeExecution); err != nil {
		return err
	}
	if s.Positions, err = openFile(s, cfg, cfg.Outputs.Positions, now, connector.EncodePosition); err != nil {
		return err
	}
	if s.Risk, err = openFile(s, cfg, cfg.Outputs.Risk, now, connector.EncodeRisk); err != nil {
		return err
	}
	if s.Streaming, err = openFile(s, cfg, cfg.Outputs.Streaming, now, connector.EncodeStream); err != nil {
		return err
	}
	if s.Inquiries, err = openFile(s, cfg, cfg.Outputs.Inquiries, now, connector.EncodeInquiry); err != nil {
		return err
	}
	if s.GUI, err = openFile(s, cfg, cfg.Outputs.GUI, now, connector.EncodeGUI); err != nil {
		return err
	}
	logs.Infof("file sinks opened, dir: %s, format: %s", cfg.OutputDir, cfg.Format)
	return nil
}

func openFile[V any](s *Sinks, cfg ops.IO, base string, now func() time.Time, encode connector.Encoder[V]) (bus.Connector[V], error) {
	out, err := connector.NewOutput[V](connector.OutputConfig{
		Path:      cfg.OutputPath(base),
		Format:    cfg.Format,
		FlushEach: cfg.FlushEach,
		Now:       now,
	}, encode)
	if err != nil {
		return nil, err
	}
	s.closers = append(s.closers, out.Close)
	return out, nil
}

func openGormSinks(ctx context.Context, s *Sinks, cfg conn.PostgresConfig) error {
	pg, err := conn.OpenPostgres(ctx, cfg)
	if err != nil {
		return fmt.Errorf("%w: %w", exception.ErrIOFailure, err)
	}
	s.closers = append(s.closers, pg.Close)
	if err := historical.Migrate(pg.DB()); err != nil {
		return err
	}

	db := pg.DB()
	s.Executions = tee(s.Executions, historical.NewGormSink(db, "executions", schema.ExecutionOrder.Key, connector.EncodeExecution))
	s.Positions = tee(s.Positions, historical.NewGormSink(db, "positions", schema.Position.Key, connector.EncodePosition))
	s.Risk = tee(s.Risk, historical.NewGormSink(db, "risk", schema.PV01.Key, connector.EncodeRisk))
	s.Streaming = tee(s.Streaming, historical.NewGormSink(db, "streaming", schema.PriceStream.Key, connector.EncodeStream))
	s.Inquiries = tee(s.Inquiries, historical.NewGormSink(db, "allinquiries", schema.Inquiry.Key, connector.EncodeInquiry))
	s.GUI = tee(s.GUI, historical.NewGormSink(db, "gui", schema.Price.Key, connector.EncodeGUI))
	logs.Infof("postgres sink opened, host: %s", cfg.Host)
	return nil
}

func tee[V any](first bus.Connector[V], next bus.Connector[V]) bus.Connector[V] {
	if first == nil {
		return next
	}
	return historical.Tee(first, next)
}
