package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/tovfikur/attsys-sub001/internal/config"
	appHTTP "github.com/tovfikur/attsys-sub001/internal/handler/http"
	"github.com/tovfikur/attsys-sub001/internal/pkg/audit"
	"github.com/tovfikur/attsys-sub001/internal/pkg/crypto"
	"github.com/tovfikur/attsys-sub001/internal/pkg/database"
	"github.com/tovfikur/attsys-sub001/internal/pkg/email"
	"github.com/tovfikur/attsys-sub001/internal/pkg/jwt"
	"github.com/tovfikur/attsys-sub001/internal/repository/postgresql"
	attendanceService "github.com/tovfikur/attsys-sub001/internal/service/attendance"
	payrollService "github.com/tovfikur/attsys-sub001/internal/service/payroll"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Error loading config: ", err)
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL(), cfg.Database.MaxConns, cfg.Database.MinConns)
	if err != nil {
		log.Fatal("Error connecting to database: ", err)
	}
	defer db.Close()

	encryptor, err := crypto.NewEncryptor(cfg.Encryption.Key)
	if err != nil {
		log.Fatal("Error initializing encryptor: ", err)
	}

	payrollRepo := postgresql.NewPayrollRepository(db, encryptor)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	auditRepo := postgresql.NewAuditRepository(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	mailer := email.NewMailer(cfg.SMTP)
	auditLogger := audit.NewLogger(auditRepo)
	processor := attendanceService.NewProcessor(attendanceRepo)

	payrollSvc := payrollService.NewService(payrollRepo, employeeRepo, processor, mailer, auditLogger)
	payrollHandler := appHTTP.NewPayrollHandler(payrollSvc)

	router := appHTTP.NewRouter(JWTService, payrollHandler, cfg.App.Env)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
