package ingest

import (
	"sort"
	"strconv"
	"strings"

	"vizrec/domain/core"
	"vizrec/domain/record"
)

const fingerprintLength = 16

// fingerprint digests the header set, the total row count and a canonical
// rendering of the sub-sampled rows. Rows are sorted before hashing so the
// digest does not depend on slot order inside the reservoir.
func fingerprint(fields []string, total int, rows []record.Record) string {
	h := core.NewHasher()

	sorted := append([]string(nil), fields...)
	sort.Strings(sorted)
	h.Write(strings.Join(sorted, "\x1f"))
	h.Write(strconv.Itoa(total))

	lines := make([]string, len(rows))
	for i, row := range rows {
		lines[i] = canonicalRow(row)
	}
	sort.Strings(lines)
	for _, line := range lines {
		h.Write(line)
	}

	return h.Sum().Short(fingerprintLength)
}

func canonicalRow(row record.Record) string {
	var b strings.Builder
	for i, k := range row.Keys() {
		if i > 0 {
			b.WriteByte('\x1e')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(row[k].Key())
	}
	return b.String()
}
