/*
   GDDrive - GD-ROM drive service
   Copyright (c) 2026, Ian Micheal

   This file is part of GDDrive.

   GDDrive is free software: you can redistribute it and/or modify
   it under the terms of the GNU General Public License as published by
   the Free Software Foundation, either version 3 of the License, or
   (at your option) any later version.

   GDDrive is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
   GNU General Public License for more details.

   You should have received a copy of the GNU General Public License
   along with GDDrive. If not, see <http://www.gnu.org/licenses/>.
*/

package control

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ianmicheal/gddrive/pkg/daemon"
	"github.com/ianmicheal/gddrive/pkg/gdrom/firmware/sim"
)

//
func newTestAPI(t *testing.T, disc *sim.Disc) (*api, *sim.Firmware) {

	t.Helper()

	fw := sim.New(disc)
	s := daemon.New(fw)
	s.Drive().RetryInterval = time.Millisecond
	s.Drive().RetryBudget = 20 * time.Millisecond

	if err := s.Startup(); err != nil {
		t.Fatalf("startup failed: %v", err)
	}
	return &api{daemon: s}, fw
}

//
func TestStatusEndpoint(t *testing.T) {

	a, _ := newTestAPI(t, sim.SingleDataDisc(300, 50))

	req := httptest.NewRequest("GET", "/status", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()

	a.status(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status code: want 200, got %d", rec.Code)
	}

	var stat Status
	if err := json.NewDecoder(rec.Body).Decode(&stat); err != nil {
		t.Fatalf("cannot decode reply: %v", err)
	}

	if !stat.Mounted {
		t.Error("not mounted")
	}
	if stat.DiscType != "CD-ROM XA" {
		t.Errorf("disc type: want CD-ROM XA, got %s", stat.DiscType)
	}
	if stat.DataBase != 300 {
		t.Errorf("data base: want 300, got %d", stat.DataBase)
	}
}

//
func TestTOCEndpoint(t *testing.T) {

	a, _ := newTestAPI(t, sim.SingleDataDisc(300, 50))

	req := httptest.NewRequest("GET", "/toc", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()

	a.toc(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status code: want 200, got %d", rec.Code)
	}

	var info TOCInfo
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("cannot decode reply: %v", err)
	}

	if info.First != 1 || info.Last != 2 {
		t.Errorf("tracks: want 1-2, got %d-%d", info.First, info.Last)
	}
	if len(info.Tracks) != 2 {
		t.Fatalf("track list: want 2, got %d", len(info.Tracks))
	}
	if info.Tracks[1].Type != "data" || info.Tracks[1].LBA != 450 {
		t.Errorf("data track wrong: %+v", info.Tracks[1])
	}
}

//
func TestTOCEndpointWithoutDisc(t *testing.T) {

	a, _ := newTestAPI(t, nil)

	rec := httptest.NewRecorder()
	a.toc(rec, httptest.NewRequest("GET", "/toc", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status code: want 404, got %d", rec.Code)
	}
}

//
func TestReadEndpoint(t *testing.T) {

	disc := sim.SingleDataDisc(300, 50)
	disc.FillSector(300, 0x77)

	a, _ := newTestAPI(t, disc)

	rec := httptest.NewRecorder()
	a.read(rec, httptest.NewRequest(
		"GET", "/read?sector=300&count=1&mode=pio", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status code: want 200, got %d", rec.Code)
	}

	body := rec.Body.Bytes()
	if len(body) != 2048 {
		t.Fatalf("body: want 2048 bytes, got %d", len(body))
	}
	if body[0] != 0x77 || body[2047] != 0x77 {
		t.Error("content wrong")
	}
}

//
func TestReadEndpointValidation(t *testing.T) {

	a, _ := newTestAPI(t, sim.SingleDataDisc(300, 50))

	testCases := []struct {
		name  string
		query string
	}{
		{name: "missing sector", query: ""},
		{name: "negative sector", query: "sector=-1"},
		{name: "zero count", query: "sector=300&count=0"},
		{name: "count above cap", query: "sector=300&count=1000"},
		{name: "unknown mode", query: "sector=300&mode=warp"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {

			rec := httptest.NewRecorder()
			a.read(rec, httptest.NewRequest("GET", "/read?"+tc.query, nil))

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status code: want 400, got %d", rec.Code)
			}
		})
	}
}

//
func TestStatusText(t *testing.T) {

	a, _ := newTestAPI(t, sim.SingleDataDisc(300, 50))

	rec := httptest.NewRecorder()
	a.status(rec, httptest.NewRequest("GET", "/status", nil))

	if ct := rec.Header().Get("Content-Type"); ct != "text/plain" {
		t.Errorf("content type: want text/plain, got %s", ct)
	}
	if rec.Body.Len() == 0 {
		t.Error("empty reply")
	}
}
