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
	"fmt"
	"net/http"
	"strconv"

	log "github.com/sirupsen/logrus"

	"github.com/ianmicheal/gddrive/pkg/gdrom"
)

// cap per request; larger reads go through several requests
const maxReadSectors = 512

// read streams raw sectors; query parameters: sector (start), count,
// mode (pio|dma, default dma)
func (a *api) read(w http.ResponseWriter, req *http.Request) {

	q := req.URL.Query()

	sector, err := strconv.Atoi(q.Get("sector"))
	if err != nil || sector < 0 {
		handleError(fmt.Errorf("illegal start sector: %s", q.Get("sector")),
			http.StatusBadRequest, w)
		return
	}

	count := 1
	if c := q.Get("count"); c != "" {
		if count, err = strconv.Atoi(c); err != nil ||
			count < 1 || count > maxReadSectors {
			handleError(fmt.Errorf("illegal sector count: %s", c),
				http.StatusBadRequest, w)
			return
		}
	}

	mode := gdrom.ModeDMA
	switch q.Get("mode") {
	case "", "dma":
	case "pio":
		mode = gdrom.ModePIO
	default:
		handleError(fmt.Errorf("unknown mode: %s", q.Get("mode")),
			http.StatusBadRequest, w)
		return
	}

	buf := make([]byte, count*gdrom.SectorSize)
	if err := a.daemon.Drive().ReadSectors(
		buf, sector, count, mode); err != nil {
		handleError(err, http.StatusServiceUnavailable, w)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.Itoa(len(buf)))
	if _, err := w.Write(buf); err != nil {
		log.Errorf("problem streaming sectors: %v", err)
	}
}
