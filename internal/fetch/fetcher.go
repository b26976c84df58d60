package fetch

import (
	"context"
	"fmt"

	"github.com/vvka-141/tripload/internal/checksum"
	"github.com/vvka-141/tripload/pkg/tripload"
)

var _ tripload.Fetcher = (*Fetcher)(nil)

// Fetcher downloads a dataset file and decodes it into memory.
type Fetcher struct {
	client     *Client
	logger     tripload.Logger
	calculator checksum.Calculator
}

// NewFetcher creates a Fetcher.
// Panics if any required dependency is nil (programmer error).
func NewFetcher(client *Client, logger tripload.Logger) *Fetcher {
	if client == nil {
		panic("client cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Fetcher{client: client, logger: logger, calculator: checksum.New()}
}

// Fetch reads spec.URL fully into memory, decodes it according to its
// format and, when spec.Schema is set, projects it onto that schema.
func (f *Fetcher) Fetch(ctx context.Context, spec tripload.DatasetSpec) (*tripload.Dataset, error) {
	format, err := DetectFormat(spec.URL, spec.Format)
	if err != nil {
		return nil, err
	}

	data, err := f.client.Read(ctx, spec.URL)
	if err != nil {
		return nil, err
	}
	sum := checksum.Label(f.calculator, data)
	f.logger.Verbose("Downloaded %s: %d bytes, %s", spec.URL, len(data), sum)

	name := spec.Name
	if name == "" {
		name = spec.Table
	}

	var ds *tripload.Dataset
	switch format {
	case tripload.FormatParquet:
		ds, err = DecodeParquet(name, data)
	case tripload.FormatCSV:
		ds, err = DecodeCSV(name, data, spec.Schema == nil)
	}
	if err != nil {
		return nil, err
	}

	if spec.Schema != nil {
		ds, err = Project(ds, *spec.Schema)
		if err != nil {
			return nil, err
		}
	}

	if err := ds.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", tripload.ErrDecodeFailed, name, err)
	}

	ds.Checksum = sum
	f.logger.Verbose("Decoded %s: %d rows, columns %v", name, ds.Len(), ds.Schema.Names())
	return ds, nil
}
