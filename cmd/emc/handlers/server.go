package handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/imamik/emc/internal/registry"
)

// List prints the tracked servers.
func List(ctx context.Context, g Globals) error {
	s, err := open(g)
	if err != nil {
		return err
	}
	defer s.close()

	entries, err := s.manager.List(ctx)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(stdout, "no servers")
		return nil
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.Name, e.Record.Region, orDash(deref(e.Record.LastKnownAddress)), orDash(deref(e.Record.DDNS))})
	}
	fmt.Fprintln(stdout, renderTable([]string{"NAME", "REGION", "ADDRESS", "DDNS"}, rows))
	return nil
}

// serverInfo is the printable view of a record. Key material is left out.
type serverInfo struct {
	Name             string `json:"name"`
	Region           string `json:"region"`
	InstanceHandle   string `json:"instance_handle"`
	KeyName          string `json:"key_name"`
	KeyFingerprint   string `json:"key_fingerprint,omitempty"`
	DDNS             string `json:"ddns,omitempty"`
	LastKnownAddress string `json:"last_known_address,omitempty"`
}

func newServerInfo(name string, rec *registry.ServerRecord) serverInfo {
	info := serverInfo{
		Name:             name,
		Region:           rec.Region,
		InstanceHandle:   rec.InstanceHandle,
		KeyName:          rec.KeyName,
		DDNS:             deref(rec.DDNS),
		LastKnownAddress: deref(rec.LastKnownAddress),
	}
	if fp, err := rec.KeyPair.Fingerprint(); err == nil {
		info.KeyFingerprint = fp
	}
	return info
}

// Info prints one server, optionally refreshing its address first.
func Info(ctx context.Context, g Globals, name string, refresh, asJSON bool) error {
	s, err := open(g)
	if err != nil {
		return err
	}
	defer s.close()

	if refresh {
		if err := s.requireToken(); err != nil {
			return err
		}
	}
	rec, err := s.manager.Info(ctx, name, refresh)
	if err != nil {
		return err
	}

	info := newServerInfo(name, rec)
	if asJSON {
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, string(data))
		return nil
	}

	field("name", info.Name)
	field("region", info.Region)
	field("server", info.InstanceHandle)
	field("ssh key", info.KeyName)
	if info.KeyFingerprint != "" {
		field("fingerprint", info.KeyFingerprint)
	}
	field("address", orDash(info.LastKnownAddress))
	field("ddns", orDash(info.DDNS))
	return nil
}

// Terminate removes a server from the registry and deletes it.
func Terminate(ctx context.Context, g Globals, name string) error {
	s, err := open(g)
	if err != nil {
		return err
	}
	defer s.close()

	if err := s.requireToken(); err != nil {
		return err
	}
	res, err := s.manager.Terminate(ctx, name)
	s.reportWarnings(res)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "terminated %s\n", name)
	return nil
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
