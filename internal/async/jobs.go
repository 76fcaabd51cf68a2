package async

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/joseph-ayodele/payment-verifier/constants"
	"github.com/joseph-ayodele/payment-verifier/internal/common"
	"github.com/joseph-ayodele/payment-verifier/internal/entity"
)

// ReadJobs parses CSV rows of provider,transaction_id[,account]. A first row whose
// provider column is "provider" is treated as a header. Blank lines are skipped.
func ReadJobs(r io.Reader) ([]Job, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var jobs []Job
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		line, _ := reader.FieldPos(0)

		if len(record) == 0 || (len(record) == 1 && strings.TrimSpace(record[0]) == "") {
			continue
		}
		first := strings.TrimSpace(record[0])
		if len(jobs) == 0 && strings.EqualFold(first, "provider") {
			continue
		}
		provider, ok := constants.ParseProvider(first)
		if !ok {
			return nil, common.InvalidInputf("BATCH_PROVIDER", "line %d: unknown provider %q", line, first)
		}
		if len(record) < 2 || strings.TrimSpace(record[1]) == "" {
			return nil, common.InvalidInputf("BATCH_TRANSACTION_ID", "line %d: transaction_id is required", line)
		}

		req := entity.VerifyRequest{TransactionID: strings.TrimSpace(record[1])}
		if len(record) > 2 {
			req.Account = strings.TrimSpace(record[2])
		}
		jobs = append(jobs, Job{Line: line, Provider: provider, Request: req})
	}
	return jobs, nil
}
