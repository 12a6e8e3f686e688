package supervisor

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strconv"
	"strings"
)

// tasklistHasPID reports whether CSV output from `tasklist /FO CSV /NH`
// contains a row whose PID column equals pid. The "INFO: No tasks" notice and
// other non-CSV lines never match.
func tasklistHasPID(output []byte, pid int) bool {
	reader := csv.NewReader(bytes.NewReader(output))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	want := strconv.Itoa(pid)
	for {
		record, err := reader.Read()
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				continue
			}
			return false
		}
		if len(record) < 2 {
			continue
		}
		if strings.TrimSpace(record[1]) == want {
			return true
		}
	}
}
