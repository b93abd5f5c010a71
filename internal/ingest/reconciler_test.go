package ingest_test

import (
	"testing"

	"github.com/xingbinice/wuxianyijin/internal/ingest"

	"github.com/stretchr/testify/assert"
)

func TestReconcile_City(t *testing.T) {
	t.Run("misspelled header maps to city_name", func(t *testing.T) {
		rec := ingest.CitySchema.Reconcile(ingest.RawRow{"city_namte": "Shenzhen", "year": 2024})

		assert.Equal(t, "Shenzhen", rec[ingest.FieldCityName])
		assert.Equal(t, 2024, rec[ingest.FieldYear])
		assert.NotContains(t, rec, "city_namte")
	})

	t.Run("localized headers with padding", func(t *testing.T) {
		rec := ingest.CitySchema.Reconcile(ingest.RawRow{
			" 城市名称 ": "深圳",
			"年份":      "2024",
			"基数下限 ":   "2360",
			"基数上限":    "30310",
			"费率":      "1",
		})

		assert.Equal(t, ingest.Record{
			"city_name": "深圳",
			"year":      "2024",
			"base_min":  "2360",
			"base_max":  "30310",
			"rate":      "1",
		}, rec)
	})

	t.Run("canonical name takes priority over aliases", func(t *testing.T) {
		rec := ingest.CitySchema.Reconcile(ingest.RawRow{"city_name": "Beijing", "city_namte": "Shenzhen"})
		assert.Equal(t, "Beijing", rec[ingest.FieldCityName])
	})

	t.Run("unknown keys dropped and absent fields left out", func(t *testing.T) {
		rec := ingest.CitySchema.Reconcile(ingest.RawRow{"note": "x", "rate": 0.5})
		assert.Equal(t, ingest.Record{"rate": 0.5}, rec)
	})

	t.Run("already trimmed key wins a trim collision", func(t *testing.T) {
		rec := ingest.CitySchema.Reconcile(ingest.RawRow{" rate": 0.2, "rate": 0.3})
		assert.Equal(t, 0.3, rec[ingest.FieldRate])
	})
}

func TestReconcile_Salary(t *testing.T) {
	rec := ingest.SalarySchema.Reconcile(ingest.RawRow{
		"员工工号": "E1",
		"员工姓名": "张三",
		"月份":   "202403",
		"工资金额": 10000.0,
	})

	assert.Equal(t, ingest.Record{
		"employee_id":   "E1",
		"employee_name": "张三",
		"month":         "202403",
		"salary_amount": 10000.0,
	}, rec)

	t.Run("id is the lowest priority alias", func(t *testing.T) {
		rec := ingest.SalarySchema.Reconcile(ingest.RawRow{"id": "7", "员工工号": "E7"})
		assert.Equal(t, "E7", rec[ingest.FieldEmployeeID])
	})
}

func TestReconcile_FixedPoint(t *testing.T) {
	canonical := ingest.RawRow{
		"employee_id":   "E1",
		"employee_name": "Alice",
		"month":         "202403",
		"salary_amount": 10000.0,
	}

	once := ingest.SalarySchema.Reconcile(canonical)
	twice := ingest.SalarySchema.Reconcile(ingest.RawRow(once))

	assert.Equal(t, ingest.Record(canonical), once)
	assert.Equal(t, once, twice)
}
