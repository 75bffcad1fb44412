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

	"github.com/ianmicheal/gddrive/pkg/daemon"
	"github.com/ianmicheal/gddrive/pkg/gdrom"
)

// reinit re-initializes the drive; an optional sectorsize query
// parameter reconfigures the sector size along the way
func (a *api) reinit(w http.ResponseWriter, req *http.Request) {

	size := int64(gdrom.Default)

	if s := req.URL.Query().Get("sectorsize"); s != "" {
		var err error
		if size, err = strconv.ParseInt(s, 10, 32); err != nil {
			handleError(
				fmt.Errorf("illegal sector size: %s", s),
				http.StatusBadRequest, w)
			return
		}
	}

	err := a.daemon.Drive().Reinit(gdrom.Default, gdrom.Default, int32(size))
	if handleError(err, http.StatusServiceUnavailable, w) {
		return
	}

	sendReply([]byte("drive re-initialized\n"), http.StatusOK, w)
}

//
func (a *api) mount(w http.ResponseWriter, req *http.Request) {

	err := a.daemon.Mount()
	if handleError(err, http.StatusServiceUnavailable, w) {
		return
	}

	_, discType := a.daemon.Mounted()
	sendReply([]byte(fmt.Sprintf("mounted %s disc\n",
		daemon.DiscTypeName(discType))), http.StatusOK, w)
}
