package metadata

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestSQLInspector_ClassDerivesFrom(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	classRows := sqlmock.NewRows([]string{"full_class_name", "base_class_name"}).
		AddRow("BisCore.PhysicalElement", "BisCore.GeometricElement3d").
		AddRow("BisCore.GeometricElement3d", "BisCore.Element").
		AddRow("BisCore.Element", nil)
	mock.ExpectQuery("SELECT full_class_name, base_class_name").WillReturnRows(classRows)
	mock.ExpectQuery("SELECT full_class_name, property_name, property_type").
		WillReturnRows(sqlmock.NewRows([]string{"full_class_name", "property_name", "property_type"}))

	schemaRows := sqlmock.NewRows([]string{"schema_name", "full_class_name"})
	mock.ExpectQuery("SELECT schema_name, full_class_name").WillReturnRows(schemaRows)

	inspector := NewSQLInspector(db)
	ctx := context.Background()

	derives, err := inspector.ClassDerivesFrom(ctx, "BisCore.PhysicalElement", "BisCore.Element")
	require.NoError(t, err)
	require.True(t, derives)

	derives, err = inspector.ClassDerivesFrom(ctx, "BisCore.Element", "BisCore.PhysicalElement")
	require.NoError(t, err)
	require.False(t, derives)

	// Same class always derives from itself.
	derives, err = inspector.ClassDerivesFrom(ctx, "BisCore.Element", "BisCore.Element")
	require.NoError(t, err)
	require.True(t, derives)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLInspector_LoadsOnce(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT full_class_name, base_class_name").
		WillReturnRows(sqlmock.NewRows([]string{"full_class_name", "base_class_name"}).
			AddRow("A", nil))
	mock.ExpectQuery("SELECT full_class_name, property_name, property_type").
		WillReturnRows(sqlmock.NewRows([]string{"full_class_name", "property_name", "property_type"}))
	mock.ExpectQuery("SELECT schema_name, full_class_name").
		WillReturnRows(sqlmock.NewRows([]string{"schema_name", "full_class_name"}))

	inspector := NewSQLInspector(db)
	ctx := context.Background()

	_, err = inspector.GetClass(ctx, "A")
	require.NoError(t, err)

	// Second call must not re-query.
	_, err = inspector.GetClass(ctx, "A")
	require.NoError(t, err)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLInspector_GetClass_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT full_class_name, base_class_name").
		WillReturnRows(sqlmock.NewRows([]string{"full_class_name", "base_class_name"}))
	mock.ExpectQuery("SELECT full_class_name, property_name, property_type").
		WillReturnRows(sqlmock.NewRows([]string{"full_class_name", "property_name", "property_type"}))
	mock.ExpectQuery("SELECT schema_name, full_class_name").
		WillReturnRows(sqlmock.NewRows([]string{"schema_name", "full_class_name"}))

	inspector := NewSQLInspector(db)
	_, err = inspector.GetClass(context.Background(), "Missing.Class")
	require.Error(t, err)
}
