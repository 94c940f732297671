package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/niksmo/egis-bridge/internal/core/domain"
	"github.com/niksmo/egis-bridge/internal/core/port"
	"github.com/niksmo/egis-bridge/pkg/schema"
	"github.com/twmb/franz-go/pkg/kgo"
)

var _ port.ImportEventsProducer = (*ImportedItemsProducer)(nil)

// An ImportedItemsProducer publishes one record per successfully imported
// item, keyed by item code.
type ImportedItemsProducer struct {
	cl      ProducerClient
	encoder Encoder
	now     func() time.Time
}

func NewImportedItemsProducer(
	opts ...ProducerOpt,
) (ImportedItemsProducer, error) {
	const op = "NewImportedItemsProducer"

	if len(opts) != 2 {
		panic(fmt.Errorf("%s: %w", op, ErrTooFewOpts)) // develop mistake
	}

	var options producerOpts
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return ImportedItemsProducer{}, fmt.Errorf("%s: %w", op, err)
		}
	}
	return ImportedItemsProducer{
		cl:      options.cl,
		encoder: options.encoder,
		now:     time.Now,
	}, nil
}

func (p ImportedItemsProducer) Close() {
	const op = "ImportedItemsProducer.Close"
	log := slog.With("op", op)
	log.Info("closing producer...")
	p.cl.Close()
	log.Info("producer is closed")
}

func (p ImportedItemsProducer) ProduceImported(
	ctx context.Context, m domain.ImportMapping, r domain.ImportReport,
) error {
	const op = "ImportedItemsProducer.ProduceImported"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	rs, err := p.createRecords(m, r)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if len(rs) == 0 {
		return nil
	}

	if err := p.produce(ctx, rs); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	slog.Debug("import events produced", "op", op, "nRecords", len(rs))
	return nil
}

func (p ImportedItemsProducer) createRecords(
	m domain.ImportMapping, r domain.ImportReport,
) (rs []*kgo.Record, err error) {
	const op = "ImportedItemsProducer.createRecords"

	importedAt := p.now().UTC()
	for _, o := range r.Succeeded() {
		s := p.toSchema(m, r.ID, o, importedAt)
		v, err := p.encoder.Encode(s)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		rs = append(rs, &kgo.Record{Key: []byte(s.ItemCode), Value: v})
	}

	return rs, nil
}

func (p ImportedItemsProducer) produce(
	ctx context.Context, rs []*kgo.Record,
) error {
	const op = "ImportedItemsProducer.produce"
	res := p.cl.ProduceSync(ctx, rs...)
	if err := res.FirstErr(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (p ImportedItemsProducer) toSchema(
	m domain.ImportMapping,
	reportID string,
	o domain.ImportOutcome,
	importedAt time.Time,
) (s schema.ImportedItemV1) {
	s.ReportID = reportID
	s.ItemCode = o.ItemCode
	s.ManufacturerProductNumber = o.ManufacturerProductNumber
	s.Status = string(o.Status)
	s.ImportedAt = importedAt

	s.Price.SellingPriceList = m.SellingPriceList
	s.Price.SellingRate = o.SellingRate.String()
	s.Price.Currency = o.Currency
	if m.HasRetailPriceList() && o.RetailRate.Valid {
		list, rate := m.RetailPriceList, o.RetailRate.Decimal.String()
		s.Price.RetailPriceList = &list
		s.Price.RetailRate = &rate
	}
	return s
}
