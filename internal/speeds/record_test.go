package speeds

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bearanvil/trafficled/internal/circbuf"
)

func bufferWith(t *testing.T, capacity int, data string) *circbuf.Buffer {
	t.Helper()
	buf, err := circbuf.New(capacity)
	require.NoError(t, err)
	if data != "" {
		require.NoError(t, buf.Store([]byte(data)))
		require.NoError(t, buf.SetMark(0, circbuf.FromOldestByte))
	}
	return buf
}

func TestNextRecord_PartialTail(t *testing.T) {
	buf := bufferWith(t, 18, "\n4,71\r\n5")
	scratch := make([]byte, 9)

	rec, err := NextRecord(buf, scratch)
	require.NoError(t, err)
	assert.Equal(t, Record{LED: 4, Speed: 71}, rec)

	n, err := buf.ReadFromMark(scratch)
	require.NoError(t, err)
	assert.Equal(t, "\n5", string(scratch[:n]))

	_, err = NextRecord(buf, scratch)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNextRecord(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    Record
		wantErr error
		wantMal bool
	}{
		{name: "crlf record", data: "1,71\r\n", want: Record{1, 71}},
		{name: "lf record", data: "9,0\n", want: Record{9, 0}},
		{name: "removal", data: "3,-1\r\n", want: Record{3, RemoveSpeed}},
		{name: "blank lines first", data: "\r\n\r\n7,5\n", want: Record{7, 5}},
		{name: "padded fields", data: "1, 80 \r\n", want: Record{1, 80}},
		{name: "no newline yet", data: "12,34", wantErr: ErrNotFound},
		{name: "only newlines", data: "\n\r\n", wantErr: ErrNotFound},
		{name: "nothing stored", data: "", wantErr: ErrNotFound},
		{name: "letters in LED", data: "a,5\n", wantMal: true},
		{name: "missing comma", data: "5\n", wantMal: true},
		{name: "extra field", data: "1,2,3\n", wantMal: true},
		{name: "other negative speed", data: "1,-2\n", wantMal: true},
		{name: "empty speed", data: "1,\n", wantMal: true},
		{name: "speed overflows", data: "1,4294967296\n", wantMal: true},
		{name: "numeric removal value", data: "7,4294967295\n", wantMal: true},
		{name: "largest speed", data: "7,4294967294\n", want: Record{7, 4294967294}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := bufferWith(t, 64, tt.data)
			rec, err := NextRecord(buf, make([]byte, 32))

			switch {
			case tt.wantMal:
				if !IsType(err, ErrTypeMalformedInput) {
					t.Fatalf("NextRecord() error = %v, want malformed input", err)
				}
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("NextRecord() error = %v, want %v", err, tt.wantErr)
				}
			default:
				if err != nil {
					t.Fatalf("NextRecord() error = %v", err)
				}
				if rec != tt.want {
					t.Errorf("NextRecord() = %v, want %v", rec, tt.want)
				}
			}
		})
	}
}

func TestNextRecord_ConsecutiveRecords(t *testing.T) {
	buf := bufferWith(t, 64, "1,71\r\n2,68\r\n3,-1\r\n")
	scratch := make([]byte, 16)

	var got []Record
	for {
		rec, err := NextRecord(buf, scratch)
		if errors.Is(err, ErrNotFound) {
			break
		}
		require.NoError(t, err)
		got = append(got, rec)
	}

	assert.Equal(t, []Record{{1, 71}, {2, 68}, {3, RemoveSpeed}}, got)
}

func TestRecord_Remove(t *testing.T) {
	assert.True(t, Record{LED: 1, Speed: RemoveSpeed}.Remove())
	assert.False(t, Record{LED: 1, Speed: 0}.Remove())
	assert.Equal(t, "1,remove", Record{LED: 1, Speed: RemoveSpeed}.String())
	assert.Equal(t, "2,40", Record{LED: 2, Speed: 40}.String())
}

func TestTable(t *testing.T) {
	table := TableFrom([]Record{{5, 40}, {2, 60}, {9, 10}, {2, 65}, {9, RemoveSpeed}})

	assert.Equal(t, []uint32{2, 5}, table.LEDs())
	assert.Equal(t, uint32(65), table[2])

	table.Apply(Record{LED: 7, Speed: RemoveSpeed})
	assert.Len(t, table, 2)
}

func TestPercentFlow(t *testing.T) {
	tests := []struct {
		live, typical uint32
		want          uint32
		ok            bool
	}{
		{50, 100, 50, true},
		{70, 70, 100, true},
		{90, 60, 150, true},
		{50, 0, 0, false},
		{RemoveSpeed, 60, 0, false},
		{60, RemoveSpeed, 0, false},
	}

	for _, tt := range tests {
		got, ok := PercentFlow(tt.live, tt.typical)
		if got != tt.want || ok != tt.ok {
			t.Errorf("PercentFlow(%d, %d) = %d, %v, want %d, %v", tt.live, tt.typical, got, ok, tt.want, tt.ok)
		}
	}
}
