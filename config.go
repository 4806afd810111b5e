/*
 * config.go, part of protarea.
 *
 *
 * Copyright 2026 The protarea authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package protarea

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config contains the parameters of an area profile calculation.
type Config struct {
	ZMin     float64 `yaml:"zmin"`     //should be below the lowest Z in the whole trajectory
	ZMax     float64 `yaml:"zmax"`     //should be above the highest Z in the whole trajectory
	Layer    float64 `yaml:"layer"`    //thickness of each slice
	Periodic bool    `yaml:"periodic"` //add the periodic images around each slice
	Tolerant bool    `yaml:"tolerant"` //count degenerate cells as zero area instead of failing
	Workers  int     `yaml:"workers"`  //0 means runtime.GOMAXPROCS
}

// DefaultConfig returns the default parameters: slices of 0.5 A from 0 to 150 A,
// with periodic images.
func DefaultConfig() Config {
	return Config{ZMin: 0, ZMax: 150, Layer: 0.5, Periodic: true}
}

// Validate returns a ConfigurationError if the parameters can't be used.
func (C Config) Validate() error {
	if _, err := Boundaries(C.ZMin, C.ZMax, C.Layer); err != nil {
		return errDecorate(err, "Validate")
	}
	if C.Workers < 0 {
		return newError(ConfigurationError, fmt.Sprintf("Negative number of workers: %d", C.Workers), "Validate")
	}
	return nil
}

func (C Config) workers() int {
	if C.Workers > 0 {
		return C.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// ReadConfig reads a YAML configuration. Keys not present keep their default values,
// unknown keys are an error.
func ReadConfig(r io.Reader) (Config, error) {
	C := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&C); err != nil && !errors.Is(err, io.EOF) {
		return C, newError(ConfigurationError, "Can't parse configuration", "ReadConfig").wrap(err)
	}
	return C, C.Validate()
}

// ReadConfigFile reads the YAML configuration in the file name.
func ReadConfigFile(name string) (Config, error) {
	f, err := os.Open(name)
	if err != nil {
		return DefaultConfig(), newError(ConfigurationError, "Can't open configuration file", "ReadConfigFile").wrap(err)
	}
	defer f.Close()
	C, err := ReadConfig(f)
	return C, errDecorate(err, "ReadConfigFile")
}
