package historical

import (
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/yanun0323/errors"
	"gorm.io/gorm"

	"bondtrading/internal/connector"
	"bondtrading/pkg/exception"
)

// Row is one persisted record.
type Row struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	Stream    string    `gorm:"size:32;index:idx_stream_key"`
	RecordKey string    `gorm:"size:64;index:idx_stream_key"`
	Line      string    `gorm:"type:text"`
	Payload   string    `gorm:"type:jsonb"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (Row) TableName() string { return "historical_records" }

// Migrate creates or updates the records table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Row{}); err != nil {
		return fmt.Errorf("%w: %w", exception.ErrIOFailure, errors.Wrap(err, "migrate historical records"))
	}
	return nil
}

// GormSink writes each record as a row, storing both its csv line and its json
// payload.
type GormSink[V any] struct {
	db     *gorm.DB
	stream string
	key    func(V) string
	encode connector.Encoder[V]
	now    func() time.Time
}

func NewGormSink[V any](db *gorm.DB, stream string, key func(V) string, encode connector.Encoder[V]) *GormSink[V] {
	return &GormSink[V]{
		db:     db,
		stream: stream,
		key:    key,
		encode: encode,
		now:    time.Now,
	}
}

func (s *GormSink[V]) Publish(v V) error {
	rec := s.encode(s.now().UTC(), v)
	payload, err := sonic.Marshal(rec)
	if err != nil {
		return errors.Wrap(err, "marshal record").With("stream", s.stream)
	}
	row := Row{
		Stream:    s.stream,
		RecordKey: s.key(v),
		Line:      strings.Join(rec.Columns(), ","),
		Payload:   string(payload),
	}
	if err := s.db.Create(&row).Error; err != nil {
		return fmt.Errorf("%w: %w", exception.ErrIOFailure, errors.Wrap(err, "insert historical record").With("stream", s.stream))
	}
	return nil
}
