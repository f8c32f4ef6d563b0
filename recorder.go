package eegsim

import (
	"errors"
	"fmt"
	"os"

	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"
)

// RecordingPublisher passes every sample on to another Publisher and also keeps
// the first maxRows sample vectors. On Close it writes them to a numpy .npy
// file as a (rows x nchan) float64 array, one row per tick.
type RecordingPublisher struct {
	Publisher
	filename string
	nchan    int
	maxRows  int
	rows     int
	buf      []float64 // row-major, maxRows*nchan
}

// NewRecordingPublisher wraps inner. The output file is created now so that a
// bad path fails before any data flows.
func NewRecordingPublisher(inner Publisher, filename string, nchan, maxRows int) (*RecordingPublisher, error) {
	if nchan < 1 || maxRows < 1 {
		return nil, fmt.Errorf("cannot record %d rows of %d channels", maxRows, nchan)
	}
	f, err := os.Create(filename)
	if err != nil {
		return nil, err
	}
	f.Close()
	return &RecordingPublisher{
		Publisher: inner,
		filename:  filename,
		nchan:     nchan,
		maxRows:   maxRows,
		buf:       make([]float64, 0, nchan*maxRows),
	}, nil
}

// RecordingOpener wraps another PublisherOpener so that its publishers record
// the first maxRows vectors to filename.
func RecordingOpener(open PublisherOpener, filename string, maxRows int) PublisherOpener {
	return func(descriptor StreamDescriptor) (Publisher, error) {
		inner, err := open(descriptor)
		if err != nil {
			return nil, err
		}
		rp, err := NewRecordingPublisher(inner, filename, descriptor.ChannelCount, maxRows)
		if err != nil {
			inner.Close()
			return nil, fmt.Errorf("%w: recording to %s: %v", ErrPublisherInit, filename, err)
		}
		return rp, nil
	}
}

// Publish forwards the sample, then records it if there is room.
func (rp *RecordingPublisher) Publish(tick uint64, sample SampleVector) error {
	if err := rp.Publisher.Publish(tick, sample); err != nil {
		return err
	}
	if rp.rows < rp.maxRows {
		for _, v := range sample {
			rp.buf = append(rp.buf, float64(v))
		}
		rp.rows++
	}
	return nil
}

// ReportStatus forwards status to the wrapped Publisher if it accepts status.
func (rp *RecordingPublisher) ReportStatus(status RunStatus) {
	if reporter, ok := rp.Publisher.(StatusReporter); ok {
		reporter.ReportStatus(status)
	}
}

// Rows returns how many sample vectors have been recorded.
func (rp *RecordingPublisher) Rows() int {
	return rp.rows
}

// Close writes the .npy file and closes the wrapped Publisher.
func (rp *RecordingPublisher) Close() error {
	werr := rp.writeFile()
	cerr := rp.Publisher.Close()
	return errors.Join(werr, cerr)
}

func (rp *RecordingPublisher) writeFile() error {
	if rp.rows == 0 {
		return nil
	}
	f, err := os.Create(rp.filename)
	if err != nil {
		return err
	}
	defer f.Close()
	m := mat.NewDense(rp.rows, rp.nchan, rp.buf)
	if err := npyio.Write(f, m); err != nil {
		return fmt.Errorf("writing %s: %w", rp.filename, err)
	}
	UpdateLogger.Printf("Recorded %d samples of %d channels to %s\n", rp.rows, rp.nchan, rp.filename)
	return nil
}
