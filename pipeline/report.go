package pipeline

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Report is the run summary persisted on shutdown.
type Report struct {
	RunID           string    `msgpack:"run_id"`
	Target          string    `msgpack:"target"`
	ProtocolVersion uint32    `msgpack:"protocol_version"`
	Start           time.Time `msgpack:"start"`
	End             time.Time `msgpack:"end"`
	Stats           Snapshot  `msgpack:"stats"`
}

func WriteReport(path string, report *Report) error {
	f, err := os.Create(path)
	if err != nil {
		log.Printf("%s: failed to create report file %s, err=%s", report.RunID, path, err.Error())
		return err
	}

	w := bufio.NewWriter(f)
	err = msgpack.NewEncoder(w).Encode(report)
	if err != nil {
		f.Close()
		log.Printf("%s: msgpack failed to encode report=%+v, err=%s", report.RunID, report, err.Error())
		return err
	}

	err = w.Flush()
	if err != nil {
		f.Close()
		log.Printf("%s: failed to flush report file %s, err=%s", report.RunID, path, err.Error())
		return err
	}

	return f.Close()
}

func ReadReport(path string) (*Report, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	report := new(Report)
	err = msgpack.Unmarshal(buf, report)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal report %s, err=%w", path, err)
	}

	return report, nil
}
