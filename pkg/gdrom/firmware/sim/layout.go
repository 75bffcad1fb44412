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

package sim

import (
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/ianmicheal/gddrive/pkg/gdrom/firmware"
)

/*
	Layout describes a simulated disc in a YAML file, e.g.:

		type: gdrom
		tracks:
		  - number: 1
		    type: audio
		    start: 0
		    sectors: 300
		  - number: 3
		    type: data
		    session: 1
		    start: 45000
		    sectors: 1024
		    file: data.img

	Track data can come from a raw image file (2048 byte sectors) or a
	fill byte; omitting both yields zero filled sectors.
*/
type Layout struct {
	Type   string        `yaml:"type"`
	Tracks []LayoutTrack `yaml:"tracks"`
}

//
type LayoutTrack struct {
	Number  int    `yaml:"number"`
	Type    string `yaml:"type"`
	Session int    `yaml:"session"`
	Start   int    `yaml:"start"`
	Sectors int    `yaml:"sectors"`
	Fill    *byte  `yaml:"fill"`
	File    string `yaml:"file"`
}

// LoadLayout reads a disc layout YAML file and builds the described
// disc. Relative track image paths are resolved against the layout
// file's folder.
func LoadLayout(file string) (*Disc, error) {

	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("cannot read disc layout: %v", err)
	}

	var l Layout
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("cannot parse disc layout: %v", err)
	}

	return l.Build(filepath.Dir(file))
}

// Build creates the disc described by this layout. Base is the folder
// against which relative track image paths are resolved.
func (l *Layout) Build(base string) (*Disc, error) {

	typ, err := discType(l.Type)
	if err != nil {
		return nil, err
	}

	disc := NewDisc(typ)

	for _, t := range l.Tracks {

		if t.Number < 1 || t.Number > tocEntries {
			return nil, fmt.Errorf("illegal track number: %d", t.Number)
		}
		if t.Sectors < 1 {
			return nil, fmt.Errorf(
				"track %d needs a positive sector count", t.Number)
		}

		ctrl := ctrlAudio
		switch t.Type {
		case "data":
			ctrl = ctrlData
		case "audio", "":
		default:
			return nil, fmt.Errorf(
				"track %d has unknown type: %s", t.Number, t.Type)
		}

		disc.Tracks = append(disc.Tracks, Track{
			Number:  t.Number,
			Session: t.Session,
			Ctrl:    ctrl,
			Start:   t.Start,
			Sectors: t.Sectors,
		})

		switch {

		case t.File != "":
			file := t.File
			if !filepath.IsAbs(file) {
				file = filepath.Join(base, file)
			}
			img, err := os.ReadFile(file)
			if err != nil {
				return nil, fmt.Errorf(
					"cannot read image for track %d: %v", t.Number, err)
			}
			for ix := 0; ix < t.Sectors && ix*SectorSize < len(img); ix++ {
				disc.SetSector(t.Start+ix, img[ix*SectorSize:])
			}

		case t.Fill != nil:
			for ix := 0; ix < t.Sectors; ix++ {
				disc.FillSector(t.Start+ix, *t.Fill)
			}
		}

		log.WithFields(log.Fields{
			"track":   t.Number,
			"start":   t.Start,
			"sectors": t.Sectors,
		}).Debug("sim: track loaded")
	}

	return disc, nil
}

//
func discType(s string) (int32, error) {

	switch s {

	case "cdda":
		return firmware.DiscCDDA, nil

	case "cdrom":
		return firmware.DiscCDROM, nil

	case "cdxa", "":
		return firmware.DiscCDXA, nil

	case "cdi":
		return firmware.DiscCDI, nil

	case "gdrom":
		return firmware.DiscGDROM, nil

	default:
		return 0, fmt.Errorf("unknown disc type: %s", s)
	}
}
