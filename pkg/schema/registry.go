package schema

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/sr"
)

type SchemaRegistryClient interface {
	CreateSchema(
		ctx context.Context, subject string, s sr.Schema,
	) (sr.SubjectSchema, error)
}

// A SchemaCreater registers avro schemas. Registering an already known
// schema returns its existing id.
type SchemaCreater struct {
	cl SchemaRegistryClient
}

func NewSchemaCreater(cl SchemaRegistryClient) SchemaCreater {
	return SchemaCreater{cl: cl}
}

func (c SchemaCreater) DetermineID(
	ctx context.Context, subject string, avroSchemaText string,
) (int, error) {
	const op = "SchemaCreater.DetermineID"
	log := slog.With("op", op, "subject", subject)

	ss, err := c.cl.CreateSchema(ctx, subject, sr.Schema{
		Schema: avroSchemaText,
		Type:   sr.TypeAvro,
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("schema is registered", "id", ss.ID, "version", ss.Version)
	return ss.ID, nil
}
