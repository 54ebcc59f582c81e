package records

import (
	"time"

	"github.com/wolfman30/telehealth-ussd/internal/geo"
)

func point(lat, lon float64) *geo.Point {
	return &geo.Point{Lat: lat, Lon: lon}
}

// SeedProviders returns the launch provider directory.
func SeedProviders() []Provider {
	return []Provider{
		{ID: 1, Name: "Dr. John Doe", Specialization: "General Medicine", Languages: "English, Swahili", Location: "Nairobi, Kenya", Coordinates: point(-1.2921, 36.8219), Email: "john.doe@tujali.health"},
		{ID: 2, Name: "Dr. Sarah Kimani", Specialization: "Pediatrics", Languages: "English, Swahili", Location: "Mombasa, Kenya", Coordinates: point(-4.0435, 39.6682), Email: "sarah.kimani@tujali.health"},
		{ID: 3, Name: "Dr. Mohammed Ali", Specialization: "Cardiology", Languages: "English, Swahili, Arabic", Location: "Kisumu, Kenya", Coordinates: point(-0.1022, 34.7617), Email: "mohammed.ali@tujali.health"},
		{ID: 4, Name: "Dr. Elizabeth Ochieng", Specialization: "Obstetrics & Gynecology", Languages: "English, Swahili, Luo", Location: "Nakuru, Kenya", Coordinates: point(-0.3031, 36.0800), Email: "elizabeth.ochieng@tujali.health"},
		{ID: 5, Name: "Dr. Thomas Mutua", Specialization: "General Medicine", Languages: "English, Swahili, Kamba", Location: "Eldoret, Kenya", Coordinates: point(0.5143, 35.2698), Email: "thomas.mutua@tujali.health"},
	}
}

// SeedHealthInfo returns the launch health information articles.
func SeedHealthInfo() []HealthInfo {
	return []HealthInfo{
		{ID: 1, Topic: TopicCovid, Language: "en", Title: "COVID-19 Prevention", Content: "Wash hands regularly, wear masks in public, maintain social distance."},
		{ID: 2, Topic: TopicCovid, Language: "sw", Title: "Kuzuia COVID-19", Content: "Osha mikono mara kwa mara, vaa mask kwa umma, dumisha umbali wa kijamii."},
		{ID: 3, Topic: TopicMaternal, Language: "en", Title: "Maternal Health Tips", Content: "Regular check-ups, balanced diet, and adequate rest are essential during pregnancy."},
		{ID: 4, Topic: TopicMaternal, Language: "sw", Title: "Ushauri wa Afya ya Uzazi", Content: "Uchunguzi wa mara kwa mara, lishe bora, na kupumzika kwa kutosha ni muhimu wakati wa ujauzito."},
		{ID: 5, Topic: TopicChronic, Language: "en", Title: "Living with Chronic Disease", Content: "Take medication as prescribed, check blood pressure and sugar regularly, and keep clinic appointments."},
		{ID: 6, Topic: TopicChronic, Language: "sw", Title: "Kuishi na Magonjwa Sugu", Content: "Tumia dawa kama ulivyoelekezwa, pima shinikizo la damu na sukari mara kwa mara, na hudhuria kliniki."},
		{ID: 7, Topic: TopicFirstAid, Language: "en", Title: "First Aid Basics", Content: "Press firmly on bleeding wounds, cool burns with clean running water, and call for help early."},
		{ID: 8, Topic: TopicFirstAid, Language: "sw", Title: "Misingi ya Huduma ya Kwanza", Content: "Bana kidonda kinachovuja damu, poza moto kwa maji safi yanayotiririka, na omba msaada mapema."},
		{ID: 9, Topic: TopicCovid, Language: "fr", Title: "Prévention du COVID-19", Content: "Lavez-vous les mains régulièrement, portez un masque en public, gardez vos distances."},
		{ID: 10, Topic: TopicMaternal, Language: "fr", Title: "Conseils de santé maternelle", Content: "Des consultations régulières, une alimentation équilibrée et du repos sont essentiels pendant la grossesse."},
	}
}

// SeedPatients returns demo patients with symptom history.
func SeedPatients(now time.Time) []Patient {
	sym := func(text string) Symptom { return NewSymptom(text, "", "", now) }
	return []Patient{
		{ID: 1, PhoneNumber: "+254711001122", Name: "Jane Wanjiku", Age: 32, Gender: "Female", Location: "Nairobi", Language: "en", Coordinates: point(-1.2864, 36.8172), CreatedAt: now,
			Symptoms: []Symptom{sym("Persistent headache and fever for 3 days"), sym("Severe cough and difficulty breathing"), sym("Pain in joints and muscles, mild fever")}},
		{ID: 2, PhoneNumber: "+254722334455", Name: "John Otieno", Age: 45, Gender: "Male", Location: "Kisumu", Language: "sw", Coordinates: point(-0.1050, 34.7550), CreatedAt: now,
			Symptoms: []Symptom{sym("Stomach pain and vomiting, moderate severity"), sym("High fever with chills and sweating")}},
		{ID: 3, PhoneNumber: "+254733667788", Name: "Mary Akinyi", Age: 28, Gender: "Female", Location: "Mombasa", Language: "en", Coordinates: point(-4.0500, 39.6700), CreatedAt: now,
			Symptoms: []Symptom{sym("Skin rash and itching on arms"), sym("Mild digestive issues with nausea")}},
		{ID: 4, PhoneNumber: "+254744990011", Name: "James Maina", Age: 52, Gender: "Male", Location: "Nakuru", Language: "sw", Coordinates: point(-0.3100, 36.0750), CreatedAt: now,
			Symptoms: []Symptom{sym("Chronic cough with chest pain, moderate severity")}},
		{ID: 5, PhoneNumber: "+254755223344", Name: "Grace Njeri", Age: 19, Gender: "Female", Location: "Eldoret", Language: "en", Coordinates: point(0.5200, 35.2650), CreatedAt: now,
			Symptoms: []Symptom{sym("Severe abdominal pain with vomiting"), sym("Mild fever and body aches")}},
	}
}

// SeedMessages returns a short demo conversation between the first patient and provider.
func SeedMessages(now time.Time) []Message {
	return []Message{
		{ID: 1, ProviderID: 1, PatientID: 1, Sender: SenderPatient, Read: true, CreatedAt: now.Add(-4 * time.Hour), Content: "Hello Dr. Doe, I have been experiencing severe headaches."},
		{ID: 2, ProviderID: 1, PatientID: 1, Sender: SenderProvider, Read: true, CreatedAt: now.Add(-3 * time.Hour), Content: "Hi Jane, I recommend you come in for a check-up. When are you available?"},
		{ID: 3, ProviderID: 1, PatientID: 1, Sender: SenderPatient, Read: true, CreatedAt: now.Add(-2 * time.Hour), Content: "I can come tomorrow morning if that works."},
		{ID: 4, ProviderID: 1, PatientID: 1, Sender: SenderProvider, Read: false, CreatedAt: now.Add(-1 * time.Hour), Content: "Perfect. I have scheduled you for 10 AM tomorrow."},
	}
}
