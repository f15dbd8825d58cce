package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to open gorm connection: %v", err)
		}

		if clearData {
			for _, table := range []string{
				"employee_permissions", "sales_records", "incentive_formulas",
				"payslips", "payroll_previews", "payroll_records",
				"leave_requests", "leave_balances", "employees",
				"positions", "departments", "permissions",
			} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		seedPermissions(db)
		seedDepartments(db)
		seedEmployees(db)

		fmt.Println("Seeding complete")
	},
}

func seedPermissions(db *gorm.DB) {
	perms := []string{
		"admin", "manage_employees", "manage_departments",
		"approve_leave", "manage_payroll", "view_all_payroll", "manage_incentive",
	}
	for _, name := range perms {
		if err := db.Exec(
			"INSERT INTO permissions (name, created_at) VALUES (?, now()) ON CONFLICT (name) DO NOTHING",
			name).Error; err != nil {
			log.Fatalf("failed to seed permission %s: %v", name, err)
		}
	}
	fmt.Println("Seeded permissions")
}

func seedDepartments(db *gorm.DB) {
	departments := []struct {
		Name        string
		Description string
	}{
		{"경영지원팀", "Management support"},
		{"영업팀", "Sales"},
		{"개발팀", "Engineering"},
	}
	for _, d := range departments {
		if err := db.Exec(
			"INSERT INTO departments (name, description, created_at, updated_at) VALUES (?, ?, now(), now()) ON CONFLICT (name) DO NOTHING",
			d.Name, d.Description).Error; err != nil {
			log.Fatalf("failed to seed department %s: %v", d.Name, err)
		}
	}

	positions := []string{"사원", "대리", "과장", "차장", "부장"}
	for i, p := range positions {
		if err := db.Exec(
			"INSERT INTO positions (name, level, created_at) VALUES (?, ?, now()) ON CONFLICT (name) DO NOTHING",
			p, i+1).Error; err != nil {
			log.Fatalf("failed to seed position %s: %v", p, err)
		}
	}
	fmt.Println("Seeded departments and positions")
}

func seedEmployees(db *gorm.DB) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)

	employees := []struct {
		Number      string
		Email       string
		Name        string
		Department  string
		BaseSalary  int64
		Permissions []string
	}{
		{"EMP001", "admin@example.co.kr", "김관리", "경영지원팀", 5_500_000, []string{"admin"}},
		{"EMP002", "hr@example.co.kr", "이인사", "경영지원팀", 4_200_000, []string{"manage_employees", "manage_departments", "approve_leave"}},
		{"EMP003", "payroll@example.co.kr", "박급여", "경영지원팀", 4_000_000, []string{"manage_payroll", "view_all_payroll", "manage_incentive"}},
		{"EMP004", "sales1@example.co.kr", "최영업", "영업팀", 3_500_000, nil},
		{"EMP005", "dev1@example.co.kr", "정개발", "개발팀", 4_100_000, nil},
	}

	for _, e := range employees {
		var exists int
		row := db.Raw("SELECT 1 FROM employees WHERE email = ?", e.Email).Row()
		if err := row.Scan(&exists); err == nil {
			fmt.Printf("employee %s already exists; will ensure permissions\n", e.Email)
		} else {
			if err := db.Exec(`INSERT INTO employees
				(employee_number, email, name, password_hash, department_id, hire_date, base_salary, employment_status, is_active, created_at, updated_at)
				VALUES (?, ?, ?, ?, (SELECT id FROM departments WHERE name = ?), now() - interval '3 years', ?, 'active', true, now(), now())`,
				e.Number, e.Email, e.Name, string(hash), e.Department, e.BaseSalary).Error; err != nil {
				log.Fatalf("failed to insert employee %s: %v", e.Email, err)
			}
			fmt.Println("Seeded employee:", e.Email)
		}

		for _, perm := range e.Permissions {
			if err := db.Exec(`INSERT INTO employee_permissions (employee_id, permission_id, created_at)
				SELECT e.id, p.id, now() FROM employees e, permissions p
				WHERE e.email = ? AND p.name = ?
				ON CONFLICT DO NOTHING`, e.Email, perm).Error; err != nil {
				log.Fatalf("failed to grant %s to %s: %v", perm, e.Email, err)
			}
		}
	}
	fmt.Println("Seeded employees")
}
