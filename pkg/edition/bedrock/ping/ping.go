// Package ping queries the status of Bedrock edition servers
// using the RakNet unconnected ping.
package ping

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/sandertv/go-raknet"
)

// Status is the status a Bedrock server advertises in its pong.
type Status struct {
	Edition         string // MCPE or MCEE
	Name            string // first MOTD line
	ProtocolVersion int
	Version         string
	Online          int
	Max             int
	ServerID        int64
	MapName         string // second MOTD line
	GameMode        string
	GameModeNumeric int
	PortV4          int
	PortV6          int

	// Latency is the round trip time of the ping.
	Latency time.Duration
}

// Edition names as advertised in the pong.
const (
	EditionPocket    = "MCPE"
	EditionEducation = "MCEE"
)

// ErrInvalidPong is returned for pongs that are not a Bedrock status.
var ErrInvalidPong = errors.New("invalid bedrock pong")

// ParsePong parses the pong data of a Bedrock server:
//
//	MCPE;name;protocol;version;online;max;serverId;mapName;gameMode;gameModeNumeric;portV4;portV6;
//
// Only the first six fields are required, the rest is optional.
func ParsePong(data []byte) (*Status, error) {
	fields := strings.Split(strings.TrimRight(string(data), ";"), ";")
	if len(fields) < 6 {
		return nil, fmt.Errorf("%w: %d fields", ErrInvalidPong, len(fields))
	}
	field := func(i int) string {
		if i < len(fields) {
			return fields[i]
		}
		return ""
	}
	num := func(i int) (int, error) {
		s := field(i)
		if s == "" {
			return 0, nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("%w: field %d %q", ErrInvalidPong, i, s)
		}
		return n, nil
	}

	s := &Status{
		Edition:  field(0),
		Name:     field(1),
		Version:  field(3),
		MapName:  field(7),
		GameMode: field(8),
	}
	var err error
	for _, f := range []struct {
		i   int
		dst *int
	}{
		{2, &s.ProtocolVersion},
		{4, &s.Online},
		{5, &s.Max},
		{9, &s.GameModeNumeric},
		{10, &s.PortV4},
		{11, &s.PortV6},
	} {
		if *f.dst, err = num(f.i); err != nil {
			return nil, err
		}
	}
	if id := field(6); id != "" {
		if s.ServerID, err = ParseServerID(id); err != nil {
			return nil, fmt.Errorf("%w: server id %q", ErrInvalidPong, id)
		}
	}
	return s, nil
}

// ParseServerID parses a server GUID. Servers advertise it either as
// signed or as unsigned 64-bit decimal; unsigned values above the int64
// range keep their bits.
func ParseServerID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err == nil {
		return id, nil
	}
	u, uerr := strconv.ParseUint(s, 10, 64)
	if uerr != nil {
		return 0, err
	}
	return int64(u), nil
}

// Pinger pings Bedrock servers.
type Pinger interface {
	Ping(ctx context.Context, host string, port int) (*Status, error)
}

// PingerFunc is a func implementing Pinger.
type PingerFunc func(ctx context.Context, host string, port int) (*Status, error)

// Ping implements Pinger.
func (f PingerFunc) Ping(ctx context.Context, host string, port int) (*Status, error) {
	return f(ctx, host, port)
}

// RakNet is the Pinger sending RakNet unconnected pings.
var RakNet Pinger = PingerFunc(Ping)

// Ping sends an unconnected ping to host:port and parses the pong.
func Ping(ctx context.Context, host string, port int) (*Status, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	start := time.Now()
	data, err := raknet.PingContext(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("error pinging %s: %w", addr, err)
	}
	latency := time.Since(start)

	s, err := ParsePong(data)
	if err != nil {
		return nil, err
	}
	s.Latency = latency
	return s, nil
}
