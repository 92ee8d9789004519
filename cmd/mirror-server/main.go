package main

import (
	"flag"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"loremaker/internal/loremaker"
	"loremaker/pkg/logger"
)

// mirror serves a local CSV at the spreadsheet export URL shape so the
// fetcher can run offline: point LOREMAKER_SHEETS_BASE_URL at it.
type mirror struct {
	DataPath string
	Sheet    string
	Logger   *logger.Logger
}

func main() {
	var (
		addr  = flag.String("addr", ":9000", "listen address")
		data  = flag.String("data", "data/characters.csv", "CSV file to serve")
		sheet = flag.String("sheet", "Characters", "sheet name the mirror answers for")
	)
	flag.Parse()

	log, err := logger.New(os.Getenv("LOREMAKER_LOG_MODE"))
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	m := &mirror{DataPath: *data, Sheet: *sheet, Logger: log.With("component", "mirror")}

	router := gin.New()
	router.Use(gin.Recovery())
	m.RegisterRoutes(router)

	log.Info("mirror-server listening", "addr", *addr, "data", *data, "sheet", *sheet)
	if err := router.Run(*addr); err != nil {
		log.Fatal("mirror-server stopped", "error", err)
	}
}

func (m *mirror) RegisterRoutes(r gin.IRouter) {
	r.GET("/spreadsheets/d/:id/gviz/tq", m.export)
}

func (m *mirror) export(c *gin.Context) {
	asCSV := strings.EqualFold(strings.TrimPrefix(c.Query("tqx"), "out:"), "csv")
	sheet := c.Query("sheet")

	if !strings.EqualFold(sheet, m.Sheet) {
		m.Logger.Debug("unknown sheet", "sheet", sheet)
		if asCSV {
			c.String(http.StatusBadRequest, "Invalid sheet name: %s", sheet)
			return
		}
		c.Data(http.StatusOK, "application/javascript; charset=utf-8",
			loremaker.EncodeGvizError("0", "invalid_query", "Invalid sheet name: "+sheet))
		return
	}

	body, err := os.ReadFile(m.DataPath)
	if err != nil {
		m.Logger.Error("read data file", "path", m.DataPath, "error", err)
		c.String(http.StatusInternalServerError, "cannot read %s", m.DataPath)
		return
	}

	if asCSV {
		c.Data(http.StatusOK, "text/csv; charset=utf-8", body)
		return
	}

	out, err := loremaker.EncodeGviz("0", loremaker.ParseCSV(string(body)))
	if err != nil {
		c.String(http.StatusInternalServerError, "encode: %v", err)
		return
	}
	c.Data(http.StatusOK, "application/javascript; charset=utf-8", out)
}
