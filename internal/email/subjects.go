package email

const (
	subjectHandoff        = "Nuevo lead derivado a un asesor"
	subjectHandoffZoneFmt = "Nuevo lead derivado: busca en %s"
)
