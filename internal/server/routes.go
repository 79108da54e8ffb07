package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/danmuck/vcioctl/internal/auth"
	"github.com/danmuck/vcioctl/internal/firmware"
	"github.com/danmuck/vcioctl/internal/protocol"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

type boardInfo struct {
	FirmwareRevision uint32 `json:"firmware_revision"`
	FirmwareDate     string `json:"firmware_date"`
	Model            string `json:"model"`
	Revision         string `json:"revision"`
	MAC              string `json:"mac"`
	Serial           string `json:"serial"`
}

type memoryInfo struct {
	ARM firmware.MemoryRegion `json:"arm"`
	VC  firmware.MemoryRegion `json:"vc"`
}

type clockInfo struct {
	Name string `json:"name"`
	ID   uint32 `json:"id"`
	Rate uint32 `json:"rate_hz"`
	Min  uint32 `json:"min_hz"`
	Max  uint32 `json:"max_hz"`
}

type thermalInfo struct {
	Temperature    float64 `json:"temperature_c"`
	MaxTemperature float64 `json:"max_temperature_c"`
}

type throttleInfo struct {
	Raw        string   `json:"raw"`
	Conditions []string `json:"conditions"`
}

type propertyInfo struct {
	Name    string `json:"name"`
	Tag     string `json:"tag"`
	InSize  int    `json:"in_size"`
	OutSize int    `json:"out_size"`
}

func (s *Server) registerRoutes(metrics bool) {
	r := s.router
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.Appeared).String(),
			"service": s.Name,
		})
	})

	r.GET("/ready", func(c *gin.Context) {
		var rev uint32
		err := s.locked(func(fw *firmware.Client) error {
			var err error
			rev, err = fw.FirmwareRevision()
			return err
		})
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"ready": false,
				"error": err.Error(),
				"kind":  protocol.ErrorKind(err),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"ready":             true,
			"firmware_revision": rev,
			"service":           s.Name,
		})
	})

	if metrics {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	fwRoutes := r.Group("/")
	if s.token != "" {
		fwRoutes.Use(auth.Require(auth.StaticToken{Token: s.token}))
	}

	fwRoutes.GET("/properties", func(c *gin.Context) {
		props := protocol.Properties()
		out := make([]propertyInfo, 0, len(props))
		for _, p := range props {
			out = append(out, propertyInfo{
				Name:    p.Name,
				Tag:     fmt.Sprintf("0x%08x", uint32(p.Tag)),
				InSize:  p.InSize,
				OutSize: p.OutSize,
			})
		}
		c.JSON(http.StatusOK, gin.H{"properties": out})
	})

	fwRoutes.GET("/board", s.handleBoard)
	fwRoutes.GET("/memory", s.handleMemory)
	fwRoutes.GET("/clocks", s.handleClocks)
	fwRoutes.GET("/clocks/:name", s.handleClock)
	fwRoutes.GET("/thermal", s.handleThermal)
	fwRoutes.GET("/throttled", s.handleThrottled)
}

func (s *Server) handleBoard(c *gin.Context) {
	var info boardInfo
	err := s.locked(func(fw *firmware.Client) error {
		rev, err := fw.FirmwareRevision()
		if err != nil {
			return err
		}
		model, err := fw.BoardModel()
		if err != nil {
			return err
		}
		revision, err := fw.BoardRevision()
		if err != nil {
			return err
		}
		mac, err := fw.BoardMACAddress()
		if err != nil {
			return err
		}
		serial, err := fw.BoardSerial()
		if err != nil {
			return err
		}
		info = boardInfo{
			FirmwareRevision: rev,
			FirmwareDate:     time.Unix(int64(rev), 0).UTC().Format(time.RFC3339),
			Model:            fmt.Sprintf("0x%08x", model),
			Revision:         fmt.Sprintf("0x%08x", revision),
			MAC:              fmt.Sprintf("%012x", mac),
			Serial:           fmt.Sprintf("%016x", serial),
		}
		return nil
	})
	if err != nil {
		s.writeError(c, "board", err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (s *Server) handleMemory(c *gin.Context) {
	var info memoryInfo
	err := s.locked(func(fw *firmware.Client) error {
		var err error
		if info.ARM, err = fw.ARMMemory(); err != nil {
			return err
		}
		info.VC, err = fw.VCMemory()
		return err
	})
	if err != nil {
		s.writeError(c, "memory", err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (s *Server) handleClocks(c *gin.Context) {
	clocks := []clockInfo{}
	err := s.locked(func(fw *firmware.Client) error {
		for _, id := range firmware.Clocks() {
			info, err := readClock(fw, id)
			if err != nil {
				return err
			}
			// Rate zero means the board has no such clock.
			if info.Rate == 0 {
				continue
			}
			clocks = append(clocks, info)
		}
		return nil
	})
	if err != nil {
		s.writeError(c, "clocks", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clocks": clocks})
}

func (s *Server) handleClock(c *gin.Context) {
	id, err := firmware.ParseClockID(c.Param("name"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	var info clockInfo
	err = s.locked(func(fw *firmware.Client) error {
		var err error
		info, err = readClock(fw, id)
		return err
	})
	if err != nil {
		s.writeError(c, "clock", err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func readClock(fw *firmware.Client, id firmware.ClockID) (clockInfo, error) {
	info := clockInfo{Name: id.String(), ID: uint32(id)}
	var err error
	if info.Rate, err = fw.ClockRate(id); err != nil {
		return clockInfo{}, err
	}
	if info.Rate == 0 {
		return info, nil
	}
	if info.Min, err = fw.MinClockRate(id); err != nil {
		return clockInfo{}, err
	}
	if info.Max, err = fw.MaxClockRate(id); err != nil {
		return clockInfo{}, err
	}
	return info, nil
}

func (s *Server) handleThermal(c *gin.Context) {
	var info thermalInfo
	err := s.locked(func(fw *firmware.Client) error {
		temp, err := fw.Temperature()
		if err != nil {
			return err
		}
		maxTemp, err := fw.MaxTemperature()
		if err != nil {
			return err
		}
		info = thermalInfo{
			Temperature:    float64(temp) / 1000,
			MaxTemperature: float64(maxTemp) / 1000,
		}
		return nil
	})
	if err != nil {
		s.writeError(c, "thermal", err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (s *Server) handleThrottled(c *gin.Context) {
	var state firmware.ThrottleState
	err := s.locked(func(fw *firmware.Client) error {
		var err error
		state, err = fw.Throttled(s.throttleMask)
		return err
	})
	if err != nil {
		s.writeError(c, "throttled", err)
		return
	}
	c.JSON(http.StatusOK, throttleInfo{
		Raw:        fmt.Sprintf("0x%08x", uint32(state)),
		Conditions: state.Conditions(),
	})
}

// writeError reports a failed firmware query as 502: the HTTP request was
// fine, the device behind it was not.
func (s *Server) writeError(c *gin.Context, query string, err error) {
	kind := protocol.ErrorKind(err)
	log.Error().
		Str("server", s.Name).
		Str("query", query).
		Str("kind", kind).
		Str("request_id", c.GetString("request_id")).
		Err(err).
		Msg("firmware query failed")
	c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "kind": kind})
}
