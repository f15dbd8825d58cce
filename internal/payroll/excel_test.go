package payroll_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/xuri/excelize/v2"
	"github.com/yeonholee/hr-payroll/internal/payroll"
)

var _ = Describe("ParseWorkbook", func() {
	It("should parse plain integer amounts", func() {
		book := buildWorkbook(
			[]interface{}{"EMP001", "3500000", "200000", "0", "0", "0", "120000", "12000", "157500", "124000", "31500"},
		)

		rows, err := payroll.ParseWorkbook(book)

		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(1))
		Expect(rows[0].Valid()).To(BeTrue())
		Expect(rows[0].RowNumber).To(Equal(2))
		Expect(rows[0].BasePay).To(Equal(int64(3500000)))
		Expect(rows[0].OvertimePay).To(Equal(int64(200000)))
	})

	It("should accept comma-grouped figures", func() {
		book := buildWorkbook(
			[]interface{}{"EMP001", "3,500,000", "0", "0", "0", "0", "0", "0", "0", "0", "0"},
		)

		rows, err := payroll.ParseWorkbook(book)

		Expect(err).NotTo(HaveOccurred())
		Expect(rows[0].Valid()).To(BeTrue())
		Expect(rows[0].BasePay).To(Equal(int64(3500000)))
	})

	It("should accept float-rendered whole amounts", func() {
		book := buildWorkbook(
			[]interface{}{"EMP001", "3500000.0", "0", "0", "0", "0", "0", "0", "0", "0", "0"},
		)

		rows, err := payroll.ParseWorkbook(book)

		Expect(err).NotTo(HaveOccurred())
		Expect(rows[0].Valid()).To(BeTrue())
		Expect(rows[0].BasePay).To(Equal(int64(3500000)))
	})

	It("should treat empty cells as zero", func() {
		book := buildWorkbook(
			[]interface{}{"EMP001", "3500000", "", "", "", "", "", "", "", "", ""},
		)

		rows, err := payroll.ParseWorkbook(book)

		Expect(err).NotTo(HaveOccurred())
		Expect(rows[0].Valid()).To(BeTrue())
		Expect(rows[0].OvertimePay).To(BeZero())
	})

	It("should flag fractional amounts", func() {
		book := buildWorkbook(
			[]interface{}{"EMP001", "3500000.55", "0", "0", "0", "0", "0", "0", "0", "0", "0"},
		)

		rows, err := payroll.ParseWorkbook(book)

		Expect(err).NotTo(HaveOccurred())
		Expect(rows[0].Valid()).To(BeFalse())
		Expect(rows[0].Errors[0]).To(ContainSubstring("base_pay"))
		Expect(rows[0].Errors[0]).To(ContainSubstring("whole amount"))
	})

	It("should flag non-numeric cells without dropping the row", func() {
		book := buildWorkbook(
			[]interface{}{"EMP001", "abc", "200000", "0", "0", "0", "0", "0", "0", "0", "0"},
		)

		rows, err := payroll.ParseWorkbook(book)

		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(1))
		Expect(rows[0].Valid()).To(BeFalse())
		Expect(rows[0].OvertimePay).To(Equal(int64(200000)))
	})

	It("should flag a missing employee number", func() {
		book := buildWorkbook(
			[]interface{}{"", "3500000", "0", "0", "0", "0", "0", "0", "0", "0", "0"},
		)

		rows, err := payroll.ParseWorkbook(book)

		Expect(err).NotTo(HaveOccurred())
		Expect(rows[0].Errors[0]).To(ContainSubstring("employee_number"))
	})

	It("should skip blank rows between data rows", func() {
		book := buildWorkbook(
			[]interface{}{"EMP001", "3500000", "0", "0", "0", "0", "0", "0", "0", "0", "0"},
			[]interface{}{"", "", "", "", "", "", "", "", "", "", ""},
			[]interface{}{"EMP002", "4200000", "0", "0", "0", "0", "0", "0", "0", "0", "0"},
		)

		rows, err := payroll.ParseWorkbook(book)

		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(2))
		Expect(rows[1].RowNumber).To(Equal(4))
	})

	It("should reject a workbook whose first row is data instead of the header", func() {
		f := excelize.NewFile()
		defer f.Close()
		sheet := f.GetSheetName(0)
		first := []interface{}{"EMP001", "3500000", "0", "0", "0", "0", "0", "0", "0", "0", "0"}
		second := []interface{}{"EMP002", "4200000", "0", "0", "0", "0", "0", "0", "0", "0", "0"}
		Expect(f.SetSheetRow(sheet, "A1", &first)).To(Succeed())
		Expect(f.SetSheetRow(sheet, "A2", &second)).To(Succeed())
		buf, err := f.WriteToBuffer()
		Expect(err).NotTo(HaveOccurred())

		_, err = payroll.ParseWorkbook(buf)

		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("header"))
	})

	It("should reject reordered header columns", func() {
		f := excelize.NewFile()
		defer f.Close()
		sheet := f.GetSheetName(0)
		shuffled := []interface{}{
			"employee_number", "income_tax", "overtime_pay", "meal_allowance",
			"transport_allowance", "incentive_pay", "base_pay", "local_tax",
			"national_pension", "health_insurance", "employment_insurance",
		}
		data := []interface{}{"EMP001", "120000", "0", "0", "0", "0", "3500000", "0", "0", "0", "0"}
		Expect(f.SetSheetRow(sheet, "A1", &shuffled)).To(Succeed())
		Expect(f.SetSheetRow(sheet, "A2", &data)).To(Succeed())
		buf, err := f.WriteToBuffer()
		Expect(err).NotTo(HaveOccurred())

		_, err = payroll.ParseWorkbook(buf)

		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("base_pay"))
	})

	It("should accept header casing and padding variations", func() {
		f := excelize.NewFile()
		defer f.Close()
		sheet := f.GetSheetName(0)
		header := []interface{}{
			"Employee_Number", " base_pay ", "overtime_pay", "meal_allowance",
			"transport_allowance", "incentive_pay", "income_tax", "local_tax",
			"national_pension", "health_insurance", "employment_insurance",
		}
		data := []interface{}{"EMP001", "3500000", "0", "0", "0", "0", "0", "0", "0", "0", "0"}
		Expect(f.SetSheetRow(sheet, "A1", &header)).To(Succeed())
		Expect(f.SetSheetRow(sheet, "A2", &data)).To(Succeed())
		buf, err := f.WriteToBuffer()
		Expect(err).NotTo(HaveOccurred())

		rows, err := payroll.ParseWorkbook(buf)

		Expect(err).NotTo(HaveOccurred())
		Expect(rows[0].BasePay).To(Equal(int64(3500000)))
	})

	It("should reject a workbook with only a header", func() {
		book := buildWorkbook()
		_, err := payroll.ParseWorkbook(book)
		Expect(err).To(HaveOccurred())
	})

	It("should reject a byte stream that is not a workbook", func() {
		_, err := payroll.ParseWorkbook(bytes.NewReader([]byte("garbage")))
		Expect(err).To(HaveOccurred())
	})

	It("should tolerate rows with trailing columns cut off", func() {
		f := excelize.NewFile()
		defer f.Close()
		sheet := f.GetSheetName(0)
		Expect(f.SetSheetRow(sheet, "A1", &uploadHeader)).To(Succeed())
		short := []interface{}{"EMP001", "3500000"}
		Expect(f.SetSheetRow(sheet, "A2", &short)).To(Succeed())
		buf, err := f.WriteToBuffer()
		Expect(err).NotTo(HaveOccurred())

		rows, err := payroll.ParseWorkbook(buf)

		Expect(err).NotTo(HaveOccurred())
		Expect(rows[0].Valid()).To(BeTrue())
		Expect(rows[0].BasePay).To(Equal(int64(3500000)))
		Expect(rows[0].IncomeTax).To(BeZero())
	})
})

var _ = Describe("Record", func() {
	Describe("Recalculate", func() {
		It("should derive gross, deductions and net", func() {
			rec := &payroll.Record{
				BasePay:             3500000,
				OvertimePay:         200000,
				MealAllowance:       100000,
				TransportAllowance:  100000,
				IncentivePay:        500000,
				IncomeTax:           150000,
				LocalTax:            15000,
				NationalPension:     157500,
				HealthInsurance:     124000,
				EmploymentInsurance: 31500,
			}

			rec.Recalculate()

			Expect(rec.GrossPay).To(Equal(int64(4400000)))
			Expect(rec.TotalDeductions).To(Equal(int64(478000)))
			Expect(rec.NetPay).To(Equal(int64(3922000)))
		})
	})
})
