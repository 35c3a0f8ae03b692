package services

import (
	"testing"
	"time"

	"clinicore/internal/models"
	"clinicore/internal/pagination"
	"clinicore/internal/testutil"
)

func TestCreatePatient(t *testing.T) {
	t.Run("assigns_sequential_numbers", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPatientService(db)
		doctor := testutil.CreateTestDoctor(t, db)

		first, err := svc.CreatePatient(doctor.ID, PatientInput{Name: "Alice"})
		testutil.AssertNoError(t, err)
		second, err := svc.CreatePatient(doctor.ID, PatientInput{Name: "Bob"})
		testutil.AssertNoError(t, err)

		if first.DoctorPatientID != 1 {
			t.Errorf("expected patient number 1, got %d", first.DoctorPatientID)
		}
		if second.DoctorPatientID != 2 {
			t.Errorf("expected patient number 2, got %d", second.DoctorPatientID)
		}
	})

	t.Run("numbering_is_per_doctor", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPatientService(db)
		doctor1 := testutil.CreateTestDoctor(t, db)
		doctor2 := testutil.CreateTestDoctor(t, db)

		_, err := svc.CreatePatient(doctor1.ID, PatientInput{Name: "Alice"})
		testutil.AssertNoError(t, err)
		_, err = svc.CreatePatient(doctor1.ID, PatientInput{Name: "Bob"})
		testutil.AssertNoError(t, err)

		other, err := svc.CreatePatient(doctor2.ID, PatientInput{Name: "Carol"})
		testutil.AssertNoError(t, err)

		if other.DoctorPatientID != 1 {
			t.Errorf("expected independent numbering to start at 1, got %d", other.DoctorPatientID)
		}
	})

	t.Run("missing_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPatientService(db)
		doctor := testutil.CreateTestDoctor(t, db)

		_, err := svc.CreatePatient(doctor.ID, PatientInput{})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestGetDoctorPatients(t *testing.T) {
	t.Run("search_by_name_phone_or_number", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPatientService(db)
		doctor := testutil.CreateTestDoctor(t, db)

		_, err := svc.CreatePatient(doctor.ID, PatientInput{Name: "Alice Smith", Phone: "+15550001"})
		testutil.AssertNoError(t, err)
		_, err = svc.CreatePatient(doctor.ID, PatientInput{Name: "Bob Jones", Phone: "+15550002"})
		testutil.AssertNoError(t, err)

		page := pagination.PageRequest{Page: 1, PageSize: 20}

		result, err := svc.GetDoctorPatients(doctor.ID, page, "Smith")
		testutil.AssertNoError(t, err)
		if result.TotalItems != 1 || result.Data[0].Name != "Alice Smith" {
			t.Errorf("expected Alice Smith only, got %+v", result.Data)
		}

		result, err = svc.GetDoctorPatients(doctor.ID, page, "5550002")
		testutil.AssertNoError(t, err)
		if result.TotalItems != 1 || result.Data[0].Name != "Bob Jones" {
			t.Errorf("expected Bob Jones only, got %+v", result.Data)
		}

		// A numeric search also matches the per-doctor patient number
		result, err = svc.GetDoctorPatients(doctor.ID, page, "2")
		testutil.AssertNoError(t, err)
		if result.TotalItems != 1 || result.Data[0].DoctorPatientID != 2 {
			t.Errorf("expected patient number 2, got %+v", result.Data)
		}
	})

	t.Run("ordered_by_patient_number", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPatientService(db)
		doctor := testutil.CreateTestDoctor(t, db)

		for _, name := range []string{"Zoe", "Adam", "Mia"} {
			_, err := svc.CreatePatient(doctor.ID, PatientInput{Name: name})
			testutil.AssertNoError(t, err)
		}

		result, err := svc.GetDoctorPatients(doctor.ID, pagination.PageRequest{Page: 1, PageSize: 20}, "")
		testutil.AssertNoError(t, err)

		for i, p := range result.Data {
			if p.DoctorPatientID != uint(i+1) {
				t.Fatalf("expected patient number %d at position %d, got %d", i+1, i, p.DoctorPatientID)
			}
		}
	})
}

func TestGetPatientDetail(t *testing.T) {
	t.Run("sums_patient_and_visit_amounts", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPatientService(db)
		doctor := testutil.CreateTestDoctor(t, db)
		patient := testutil.CreateTestPatient(t, db, doctor.ID)

		// Patient-level accumulators
		testutil.AssertNoError(t, db.Model(patient).Updates(map[string]interface{}{
			"amount_due":  100.0,
			"amount_paid": 60.0,
		}).Error)

		testutil.CreateTestVisit(t, db, patient.ID, time.Now(), 200, 150)
		testutil.CreateTestVisit(t, db, patient.ID, time.Now(), 50, 50)

		detail, err := svc.GetPatientDetail(doctor.ID, patient.ID)
		testutil.AssertNoError(t, err)

		if detail.Billing.TotalDue != 350 {
			t.Errorf("expected total due 350, got %v", detail.Billing.TotalDue)
		}
		if detail.Billing.TotalPaid != 260 {
			t.Errorf("expected total paid 260, got %v", detail.Billing.TotalPaid)
		}
		if detail.Billing.TotalUnpaid != 90 {
			t.Errorf("expected total unpaid 90, got %v", detail.Billing.TotalUnpaid)
		}
	})
}

func TestUpdatePatient(t *testing.T) {
	t.Run("partial_update", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPatientService(db)
		doctor := testutil.CreateTestDoctor(t, db)
		patient := testutil.CreateTestPatient(t, db, doctor.ID)

		completed := true
		updated, err := svc.UpdatePatient(doctor.ID, patient.ID, PatientInput{
			Name:      "Renamed",
			Age:       40,
			Completed: &completed,
		})
		testutil.AssertNoError(t, err)

		if updated.Name != "Renamed" {
			t.Errorf("expected Renamed, got %s", updated.Name)
		}
		if updated.Age != 40 {
			t.Errorf("expected age 40, got %d", updated.Age)
		}
		if !updated.Completed {
			t.Error("expected completed")
		}
	})

	t.Run("wrong_doctor", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPatientService(db)
		doctor1 := testutil.CreateTestDoctor(t, db)
		doctor2 := testutil.CreateTestDoctor(t, db)
		patient := testutil.CreateTestPatient(t, db, doctor1.ID)

		_, err := svc.UpdatePatient(doctor2.ID, patient.ID, PatientInput{Name: "Stolen"})
		testutil.AssertAppError(t, err, "PATIENT_NOT_FOUND")
	})
}

func TestDeletePatient(t *testing.T) {
	t.Run("removes_dependents", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPatientService(db)
		doctor := testutil.CreateTestDoctor(t, db)
		patient := testutil.CreateTestPatient(t, db, doctor.ID)

		testutil.CreateTestVisit(t, db, patient.ID, time.Now(), 100, 100)
		testutil.CreateTestAppointment(t, db, patient.ID, time.Now().AddDate(0, 0, 3))

		testutil.AssertNoError(t, svc.DeletePatient(doctor.ID, patient.ID))

		var visits, appointments int64
		db.Model(&models.Visit{}).Where("patient_id = ?", patient.ID).Count(&visits)
		db.Model(&models.Appointment{}).Where("patient_id = ?", patient.ID).Count(&appointments)
		if visits != 0 || appointments != 0 {
			t.Errorf("expected no orphans, got %d visits and %d appointments", visits, appointments)
		}

		_, err := svc.GetPatientByID(doctor.ID, patient.ID)
		testutil.AssertAppError(t, err, "PATIENT_NOT_FOUND")
	})
}
