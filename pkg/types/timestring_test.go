package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTimeStringFromString(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "valid morning", input: "09:00"},
		{name: "valid midnight", input: "00:00"},
		{name: "valid end of day", input: "23:59"},
		{name: "invalid hour", input: "24:00", wantErr: true},
		{name: "invalid minutes", input: "10:60", wantErr: true},
		{name: "missing leading zero accepted by layout", input: "9:00", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "garbage", input: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, err := NewTimeStringFromString(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTimeString)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.input, ts.String())
		})
	}
}

func TestTimeString_AddMinutes(t *testing.T) {
	tests := []struct {
		name    string
		start   TimeString
		add     int
		want    TimeString
		wantErr bool
	}{
		{name: "within hour", start: "10:00", add: 30, want: "10:30"},
		{name: "across hour", start: "10:45", add: 30, want: "11:15"},
		{name: "zero", start: "10:00", add: 0, want: "10:00"},
		{name: "negative within day", start: "10:00", add: -15, want: "09:45"},
		{name: "past midnight", start: "23:30", add: 60, wantErr: true},
		{name: "before day start", start: "00:10", add: -20, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.start.AddMinutes(tt.add)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeString_Ordering(t *testing.T) {
	a := TimeString("09:00")
	b := TimeString("10:00")

	assert.True(t, a.IsBefore(b))
	assert.False(t, b.IsBefore(a))
	assert.True(t, b.IsAfter(a))
	assert.False(t, a.IsAfter(a))
	assert.False(t, a.IsBefore(a))
}

func TestTimeString_Combine(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Moscow")
	require.NoError(t, err)

	date := time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC)

	instant, err := TimeString("09:30").Combine(date, loc)
	require.NoError(t, err)

	assert.Equal(t, 2025, instant.Year())
	assert.Equal(t, time.October, instant.Month())
	assert.Equal(t, 15, instant.Day())
	assert.Equal(t, 9, instant.Hour())
	assert.Equal(t, 30, instant.Minute())
	assert.Equal(t, loc, instant.Location())
}

func TestOverlaps(t *testing.T) {
	day := time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC)
	at := func(h, m int) time.Time { return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute) }

	tests := []struct {
		name                           string
		aStart, aEnd, bStart, bEnd     time.Time
		want                           bool
	}{
		{name: "real overlap", aStart: at(10, 0), aEnd: at(11, 0), bStart: at(10, 30), bEnd: at(11, 30), want: true},
		{name: "contained", aStart: at(10, 0), aEnd: at(12, 0), bStart: at(10, 30), bEnd: at(11, 0), want: true},
		{name: "touching endpoints do not overlap", aStart: at(9, 0), aEnd: at(10, 0), bStart: at(10, 0), bEnd: at(11, 0), want: false},
		{name: "touching endpoints reversed", aStart: at(10, 0), aEnd: at(11, 0), bStart: at(9, 0), bEnd: at(10, 0), want: false},
		{name: "disjoint", aStart: at(9, 0), aEnd: at(9, 30), bStart: at(11, 0), bEnd: at(12, 0), want: false},
		{name: "one minute into the other", aStart: at(10, 0), aEnd: at(11, 1), bStart: at(11, 0), bEnd: at(12, 0), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd))
			// Пересечение симметрично
			assert.Equal(t, tt.want, Overlaps(tt.bStart, tt.bEnd, tt.aStart, tt.aEnd))
		})
	}
}

func TestTimeString_ScanValue(t *testing.T) {
	var ts TimeString
	require.NoError(t, ts.Scan("10:30:00"))
	assert.Equal(t, TimeString("10:30"), ts)

	require.NoError(t, ts.Scan([]byte("08:15")))
	assert.Equal(t, TimeString("08:15"), ts)

	v, err := TimeString("12:00").Value()
	require.NoError(t, err)
	assert.Equal(t, "12:00", v)

	v, err = TimeString("").Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}
