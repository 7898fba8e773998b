package main

import (
	"fmt"
	"net/http"

	"github.com/attendx/attendx-backend-go/internal/config"
	appHTTP "github.com/attendx/attendx-backend-go/internal/handler/http"
	"github.com/attendx/attendx-backend-go/internal/pkg/database"
	"github.com/attendx/attendx-backend-go/internal/pkg/jwt"
	"github.com/attendx/attendx-backend-go/internal/repository/postgresql"
	attendanceService "github.com/attendx/attendx-backend-go/internal/service/attendance"
	reportService "github.com/attendx/attendx-backend-go/internal/service/report"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}
	defer db.Close()

	userRepo := postgresql.NewUserRepository(db)
	recordRepo := postgresql.NewRecordRepository(db)

	jwtService := jwt.NewJWTService(cfg.JWT.Secret)
	recordService := attendanceService.NewRecordService(db, recordRepo)
	reportSvc := reportService.NewReportService(recordRepo, userRepo)

	attendanceHandler := appHTTP.NewAttendanceHandler(recordService, jwtService)
	reportHandler := appHTTP.NewReportHandler(reportSvc, jwtService)

	router := appHTTP.NewRouter(cfg, jwtService, attendanceHandler, reportHandler)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
