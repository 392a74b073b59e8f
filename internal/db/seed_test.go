package db

import (
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mokoena/sla-app/internal/detector"
	"github.com/mokoena/sla-app/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := AutoMigrateAll(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return gdb
}

func TestSeedTemplatesIdempotent(t *testing.T) {
	gdb := openTestDB(t)

	SeedTemplates(gdb)
	var first int64
	gdb.Model(&models.SLATemplate{}).Count(&first)
	if first != 4 {
		t.Fatalf("templates after first seed = %d, want 4", first)
	}

	SeedTemplates(gdb)
	var second int64
	gdb.Model(&models.SLATemplate{}).Count(&second)
	if second != first {
		t.Fatalf("templates after second seed = %d, want %d", second, first)
	}
}

func TestSeedTemplatesCoverEveryCategory(t *testing.T) {
	gdb := openTestDB(t)
	SeedTemplates(gdb)

	for _, cat := range detector.Categories() {
		var tmpl models.SLATemplate
		if err := gdb.Preload("Variables").Where("category = ? AND is_default = ?", cat, true).First(&tmpl).Error; err != nil {
			t.Errorf("no default template for %s: %v", cat, err)
			continue
		}
		if len(tmpl.Variables) == 0 {
			t.Errorf("%s template has no variables", cat)
		}
		if !strings.Contains(tmpl.Body, "{{client_name}}") {
			t.Errorf("%s template body missing client_name token", cat)
		}
		// Every declared required variable must appear in the body.
		for _, v := range tmpl.Variables {
			if v.Required && !strings.Contains(tmpl.Body, "{{"+v.Name+"}}") {
				t.Errorf("%s: required variable %s not referenced in body", cat, v.Name)
			}
		}
	}
}
